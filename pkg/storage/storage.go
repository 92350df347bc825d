package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

type Storage struct {
	basePath string
}

// NewStorage 스토리지 생성
func NewStorage(basePath string) *Storage {
	return &Storage{
		basePath: basePath,
	}
}

// SaveImage 캐릭터/환경 이미지 저장
func (s *Storage) SaveImage(file *multipart.FileHeader, kind string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("invalid image type: only png, jpg and webp allowed")
	}

	if kind != "characters" && kind != "environments" {
		return "", fmt.Errorf("invalid storage kind: %s", kind)
	}

	filename := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
	savePath := filepath.Join(s.basePath, kind, filename)

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(savePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(savePath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return savePath, nil
}

// FileURL 저장 경로를 정적 서빙 URL로 변환
func (s *Storage) FileURL(savePath string) string {
	rel, err := filepath.Rel(s.basePath, savePath)
	if err != nil {
		return savePath
	}
	return "/storage/" + filepath.ToSlash(rel)
}

// DeleteFile 저장된 파일 삭제
func (s *Storage) DeleteFile(savePath string) error {
	if err := os.Remove(savePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
