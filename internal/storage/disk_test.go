package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDiskStore_SaveAndDelete は保存・削除の往復を検証する。
func TestDiskStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "http://localhost:8000/")

	url, err := store.Save(context.Background(), "1700000000000.png", "image/png", strings.NewReader("fake-png"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if url != "http://localhost:8000/uploads/1700000000000.png" {
		t.Errorf("unexpected public URL: %s", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000.png"))
	if err != nil {
		t.Fatalf("saved file is not readable: %v", err)
	}
	if string(data) != "fake-png" {
		t.Errorf("unexpected file content: %s", data)
	}

	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "1700000000000.png")); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
}

// TestDiskStore_DeleteMissingFile は存在しないファイルの削除が成功扱いになることを検証する。
func TestDiskStore_DeleteMissingFile(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "http://localhost:8000")

	if err := store.Delete(context.Background(), "http://localhost:8000/uploads/missing.png"); err != nil {
		t.Errorf("expected missing file delete to succeed, got %v", err)
	}
}

// TestDiskStore_DeleteIgnoresDirectoryTraversal はURL中のパス要素がファイル名に縮退されることを検証する。
func TestDiskStore_DeleteIgnoresDirectoryTraversal(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "outside.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	uploadDir := filepath.Join(dir, "uploads")
	store := NewDiskStore(uploadDir, "http://localhost:8000")

	// ../outside.txt はベース名 outside.txt に縮退し、uploads配下のみが対象になる
	if err := store.Delete(context.Background(), "http://localhost:8000/uploads/../outside.txt"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the upload directory must not be deleted")
	}
}

// TestDiskStore_DeleteRejectsEmptyFilename はファイル名のないURLがエラーになることを検証する。
func TestDiskStore_DeleteRejectsEmptyFilename(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "http://localhost:8000")

	if err := store.Delete(context.Background(), "http://localhost:8000/"); err == nil {
		t.Error("expected error for URL without a filename")
	}
}

// TestNewFilename は保存名が拡張子を保持することを検証する。
func TestNewFilename(t *testing.T) {
	name := NewFilename("photo.jpg")
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("expected .jpg suffix, got %s", name)
	}

	noExt := NewFilename("photo")
	if strings.Contains(noExt, ".") {
		t.Errorf("expected no extension, got %s", noExt)
	}
}
