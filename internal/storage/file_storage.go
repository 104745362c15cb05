package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chats/internal/utils"
)

var ErrOutsideRoot = errors.New("path is outside the file storage")

// FileStorage lays out uploaded files under a single root directory:
//
//	<root>/auth/<user_id>/profile_picture/<filename>
//	<root>/chat_messages/<user_id>/<chat_id>/<message_id>/<random>.png
type FileStorage struct {
	root string
}

func NewFileStorage(root string) (*FileStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create file storage root: %w", err)
	}
	return &FileStorage{root: abs}, nil
}

func (s *FileStorage) Root() string { return s.root }

// SaveProfilePicture replaces whatever picture the user had before.
func (s *FileStorage) SaveProfilePicture(userID int, filename string, r io.Reader) (string, error) {
	name := sanitizeName(filename)
	if name == "" {
		return "", errors.New("empty file name")
	}
	dir := filepath.Join(s.root, "auth", strconv.Itoa(userID), "profile_picture")
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	return writeFile(filepath.Join(dir, name), r)
}

func (s *FileStorage) SaveMessageImage(userID, chatID, messageID int, r io.Reader) (string, error) {
	name, err := utils.RandomName(15)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, "chat_messages", strconv.Itoa(userID), strconv.Itoa(chatID), strconv.Itoa(messageID))
	return writeFile(filepath.Join(dir, name+".png"), r)
}

// Resolve checks that a stored path still points inside the root and exists.
func (s *FileStorage) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func writeFile(path string, r io.Reader) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
