package imageproc

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Публично доступный Arial Bold - скачивается один раз в локальный кэш
const defaultFontURL = "https://github.com/matomo-org/travis-scripts/raw/master/fonts/Arial_Bold.ttf"

const minFontSize = 90

// FaceSource - контракт поставщика шрифта для нанесения текста на изображение
type FaceSource interface {
	Face(imageWidth int) (font.Face, error)
}

// TruetypeSource - основной поставщик: скачивает жирный TTF в кэш и
// выдает face с размером пропорциональным ширине изображения
type TruetypeSource struct {
	URL       string
	CachePath string
	Client    *http.Client

	mu     sync.Mutex
	parsed *truetype.Font
}

func NewTruetypeSource(cacheDir string) *TruetypeSource {
	return &TruetypeSource{
		URL:       defaultFontURL,
		CachePath: filepath.Join(cacheDir, "arialbd.ttf"),
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *TruetypeSource) Face(imageWidth int) (font.Face, error) {
	f, err := s.font()
	if err != nil {
		return nil, err
	}

	size := imageWidth / 15
	if size < minFontSize {
		size = minFontSize
	}

	return truetype.NewFace(f, &truetype.Options{Size: float64(size)}), nil
}

func (s *TruetypeSource) font() (*truetype.Font, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parsed != nil {
		return s.parsed, nil
	}

	if err := s.ensureFile(); err != nil {
		return nil, fmt.Errorf("materialize font file: %w", err)
	}

	data, err := os.ReadFile(s.CachePath)
	if err != nil {
		return nil, fmt.Errorf("read cached font: %w", err)
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	s.parsed = f
	return f, nil
}

func (s *TruetypeSource) ensureFile() error {
	if _, err := os.Stat(s.CachePath); err == nil {
		return nil
	}

	log.Println("Downloading watermark font...")
	resp, err := s.Client.Get(s.URL)
	if err != nil {
		return err
	}
	defer closeFileFlow(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("font download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.CachePath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(s.CachePath, data, 0o644)
}

// DefaultSource - встроенный fallback-шрифт, не может упасть
type DefaultSource struct{}

func (DefaultSource) Face(int) (font.Face, error) {
	return basicfont.Face7x13, nil
}

// FallbackChain - пробует поставщиков по порядку; если упали все,
// деградирует до встроенного шрифта вместо ошибки
type FallbackChain []FaceSource

func (c FallbackChain) Face(imageWidth int) (font.Face, error) {
	for _, src := range c {
		face, err := src.Face(imageWidth)
		if err == nil {
			return face, nil
		}
		log.Printf("Font source unavailable, trying next: %v", err)
	}

	return basicfont.Face7x13, nil
}

// DefaultFaces - цепочка по умолчанию: скачанный TTF, затем встроенный шрифт
func DefaultFaces() FaceSource {
	return FallbackChain{NewTruetypeSource(os.TempDir()), DefaultSource{}}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Failed to close fileflow:", err)
	}
}
