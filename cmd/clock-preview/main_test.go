package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gomono"

	"clock-overlay/internal/clock"
	"clock-overlay/internal/config"
)

func TestPreviewText(t *testing.T) {
	text, err := previewText("9:05", clock.Real)
	require.NoError(t, err)
	assert.Equal(t, "09:05", text)

	_, err = previewText("noon", clock.Real)
	assert.Error(t, err)

	text, err = previewText("09:05", clock.Real)
	require.NoError(t, err)
	assert.Equal(t, "09:05", text)

	_, err = previewText("24:00", clock.Real)
	assert.Error(t, err)

	at := time.Date(2024, 3, 1, 23, 59, 30, 0, time.Local)
	text, err = previewText("", clock.Fixed(at))
	require.NoError(t, err)
	assert.Equal(t, "23:59", text)
}

func TestWritePreview(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "mono.ttf")
	require.NoError(t, os.WriteFile(fontPath, gomono.TTF, 0644))

	oc := config.OverlayConfig{
		Width:       100,
		Height:      50,
		FontFamily:  "mono",
		FontPath:    fontPath,
		FontSize:    20,
		TextColor:   "green",
		StrokeColor: "black",
		StrokeWidth: 2,
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, writePreview(context.Background(), &buf, oc, "12:34", logger))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corner should stay transparent")

	var green int
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0xffff && g == 0xffff && r == 0 && b == 0 {
				green++
			}
		}
	}
	assert.Greater(t, green, 0)
}

func TestWritePreview_BadColor(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "mono.ttf")
	require.NoError(t, os.WriteFile(fontPath, gomono.TTF, 0644))

	oc := config.OverlayConfig{
		Width: 100, Height: 50, FontFamily: "mono", FontPath: fontPath, FontSize: 20,
		TextColor: "not-a-color", StrokeColor: "black", StrokeWidth: 2,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Error(t, writePreview(context.Background(), io.Discard, oc, "12:34", logger))
}

func TestCommand_Stdout(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "mono.ttf")
	require.NoError(t, os.WriteFile(fontPath, gomono.TTF, 0644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("overlay:\n  font_path: "+fontPath+"\n"), 0644))

	var out bytes.Buffer
	cmd := newCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", cfgPath, "--time", "07:30", "-o", "-"})
	require.NoError(t, cmd.Execute())

	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}
