package fonts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// DPI used to turn point sizes into pixels, matching the common X default.
const DPI = 96

// Provider resolves a font family to a face
type Provider interface {
	Face(ctx context.Context, family string, size float64) (font.Face, error)
	GetName() string
}

// Loaded is a resolved face with the provider that produced it
type Loaded struct {
	Face   font.Face
	Source string
}

// Service tries providers in order until one yields a face
type Service struct {
	providers []Provider
	logger    *slog.Logger
}

// New creates a font service. With no explicit path the chain is the
// system matcher followed by the built-in Go Mono face.
func New(fontPath string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	service := &Service{
		logger: logger.With("component", "fonts"),
	}
	if fontPath != "" {
		service.AddProvider(NewFileProvider(fontPath))
	}
	service.AddProvider(NewMatchProvider("fc-match"))
	service.AddProvider(NewGoMonoProvider())
	return service
}

// AddProvider appends a provider to the chain
func (s *Service) AddProvider(provider Provider) {
	s.providers = append(s.providers, provider)
}

// Load resolves family at size points. Cancelling ctx stops the chain.
func (s *Service) Load(ctx context.Context, family string, size float64) (*Loaded, error) {
	var errs []error
	for _, provider := range s.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		face, err := provider.Face(ctx, family, size)
		if err != nil {
			s.logger.Debug("font provider failed", "provider", provider.GetName(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", provider.GetName(), err))
			continue
		}
		s.logger.Debug("font loaded", "provider", provider.GetName(), "family", family, "size", size)
		return &Loaded{Face: face, Source: provider.GetName()}, nil
	}

	return nil, fmt.Errorf("no font found for %q: %w", family, errors.Join(errs...))
}

// FileProvider loads an explicit font file, ignoring the family
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) GetName() string {
	return "file"
}

func (p *FileProvider) Face(_ context.Context, _ string, size float64) (font.Face, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	return ParseFace(data, size)
}

// MatchProvider asks fontconfig's fc-match for the file of a family
type MatchProvider struct {
	command string
	timeout time.Duration
}

// NewMatchProvider creates a provider running command
func NewMatchProvider(command string) *MatchProvider {
	return &MatchProvider{command: command, timeout: 5 * time.Second}
}

func (p *MatchProvider) GetName() string {
	return "fontconfig"
}

func (p *MatchProvider) Face(ctx context.Context, family string, size float64) (font.Face, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, p.command, "--format=%{file}", family).Output()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", p.command, err)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return nil, fmt.Errorf("%s returned no file for %q", p.command, family)
	}
	return NewFileProvider(path).Face(ctx, family, size)
}

// GoMonoProvider serves the embedded Go Mono face for any family
type GoMonoProvider struct{}

// NewGoMonoProvider creates the built-in provider
func NewGoMonoProvider() *GoMonoProvider {
	return &GoMonoProvider{}
}

func (GoMonoProvider) GetName() string {
	return "gomono"
}

func (GoMonoProvider) Face(_ context.Context, _ string, size float64) (font.Face, error) {
	return ParseFace(gomono.TTF, size)
}

// ParseFace parses a TrueType/OpenType font or the first face of a
// collection and sizes it.
func ParseFace(data []byte, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}

	var (
		f   *opentype.Font
		err error
	)
	if bytes.HasPrefix(data, []byte("ttcf")) {
		var coll *opentype.Collection
		coll, err = opentype.ParseCollection(data)
		if err == nil {
			f, err = coll.Font(0)
		}
	} else {
		f, err = opentype.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     DPI,
		Hinting: font.HintingFull,
	})
}
