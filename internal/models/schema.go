package models

type HTMLInput struct {
	HTMLTag     string         `json:"html_tag"`
	HTMLTagArgs map[string]any `json:"html_tag_args"`
}

type ForeignKeyRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type ColumnInfo struct {
	Type       string          `json:"type"`
	HTML       []HTMLInput     `json:"html"`
	PrimaryKey bool            `json:"primary_key"`
	ForeignKey []ForeignKeyRef `json:"foreign_key"`
}

// column type names as reported by the admin tables endpoint
const (
	ColumnBoolean  = "Boolean"
	ColumnDateTime = "DateTime"
	ColumnDate     = "Date"
	ColumnInteger  = "Integer"
	ColumnString   = "String"
	ColumnText     = "Text"
	ColumnTime     = "Time"
)

// HTMLInputs returns the form inputs best suited to edit a column of the given type.
func HTMLInputs(columnType string) []HTMLInput {
	switch columnType {
	case ColumnBoolean:
		return []HTMLInput{{HTMLTag: "input", HTMLTagArgs: map[string]any{"type": "checkbox"}}}
	case ColumnDateTime:
		return []HTMLInput{{HTMLTag: "input", HTMLTagArgs: map[string]any{"type": "datetime-local"}}}
	case ColumnDate:
		return []HTMLInput{{HTMLTag: "input", HTMLTagArgs: map[string]any{"type": "date"}}}
	case ColumnInteger:
		return []HTMLInput{{HTMLTag: "input", HTMLTagArgs: map[string]any{"type": "number", "step": 1}}}
	case ColumnText:
		return []HTMLInput{{HTMLTag: "textarea", HTMLTagArgs: map[string]any{"type": "text"}}}
	case ColumnTime:
		return []HTMLInput{{HTMLTag: "input", HTMLTagArgs: map[string]any{"type": "time"}}}
	default:
		return []HTMLInput{{HTMLTag: "input", HTMLTagArgs: map[string]any{"type": "text"}}}
	}
}

type column struct {
	name string
	typ  string
	pk   bool
	fk   *ForeignKeyRef
}

// schema mirrors the migrations at head.
var schema = []struct {
	table   string
	columns []column
}{
	{"users", []column{
		{name: "user_id", typ: ColumnInteger, pk: true},
		{name: "username", typ: ColumnString},
		{name: "email", typ: ColumnString},
		{name: "hashed_password", typ: ColumnString},
		{name: "create_date", typ: ColumnDate},
		{name: "role", typ: ColumnInteger},
	}},
	{"profiles", []column{
		{name: "user_id", typ: ColumnInteger, pk: true, fk: &ForeignKeyRef{Table: "users", Column: "user_id"}},
		{name: "first_name", typ: ColumnString},
		{name: "last_name", typ: ColumnString},
		{name: "profile_pic_path", typ: ColumnString},
		{name: "date_of_birth", typ: ColumnDate},
	}},
	{"chats", []column{
		{name: "chat_id", typ: ColumnInteger, pk: true},
		{name: "name", typ: ColumnString},
		{name: "create_date", typ: ColumnDate},
	}},
	{"chat_members", []column{
		{name: "chat_member_id", typ: ColumnInteger, pk: true},
		{name: "user_id", typ: ColumnInteger, fk: &ForeignKeyRef{Table: "users", Column: "user_id"}},
		{name: "chat_id", typ: ColumnInteger, fk: &ForeignKeyRef{Table: "chats", Column: "chat_id"}},
		{name: "date_when_added", typ: ColumnDate},
		{name: "is_creator", typ: ColumnBoolean},
	}},
	{"messages", []column{
		{name: "message_id", typ: ColumnInteger, pk: true},
		{name: "chat_member_id", typ: ColumnInteger, fk: &ForeignKeyRef{Table: "chat_members", Column: "chat_member_id"}},
		{name: "text", typ: ColumnText},
		{name: "time_sent", typ: ColumnDateTime},
		{name: "reply_to", typ: ColumnInteger, fk: &ForeignKeyRef{Table: "messages", Column: "message_id"}},
		{name: "image_path", typ: ColumnString},
	}},
}

// SchemaCatalog describes every table and column, keyed by table then column name.
func SchemaCatalog() map[string]map[string]ColumnInfo {
	out := make(map[string]map[string]ColumnInfo, len(schema))
	for _, t := range schema {
		cols := make(map[string]ColumnInfo, len(t.columns))
		for _, c := range t.columns {
			info := ColumnInfo{Type: c.typ, HTML: HTMLInputs(c.typ), PrimaryKey: c.pk}
			if c.fk != nil {
				info.ForeignKey = []ForeignKeyRef{*c.fk}
			}
			cols[c.name] = info
		}
		out[t.table] = cols
	}
	return out
}
