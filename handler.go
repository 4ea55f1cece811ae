package colorquant

import (
	"fmt"
	"image"
	"log/slog"
	"slices"
	"time"
)

// State tracks how far a Handler has advanced through the pipeline.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateIndexed
	StateReduced
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateIndexed:
		return "indexed"
	case StateReduced:
		return "reduced"
	default:
		return "empty"
	}
}

// Handler owns one image's pixel matrix, unique color set and color index
// and drives them through decode → index → reduce → rewrite. A failed step
// leaves the handler in its last completed state with that state's data
// intact; re-entering Handle starts over from empty.
type Handler struct {
	reducer Reducer
	log     *slog.Logger

	state  State
	matrix *Matrix
	colors []Color
	index  *ColorIndex
	format string
}

// NewHandler wires a reducer to a fresh handler. A nil logger falls back to
// slog.Default.
func NewHandler(r Reducer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{reducer: r, log: log}
}

// Handle runs the full pipeline on the image file at path.
func (h *Handler) Handle(path string) error {
	h.reset()
	start := time.Now()
	m, format, err := DecodeImage(path)
	if err != nil {
		return err
	}
	h.matrix = m
	h.format = format
	h.state = StateLoaded
	h.log.Info("image loaded",
		"path", path, "format", format, "width", m.W, "height", m.H, "elapsed", time.Since(start))
	return h.run()
}

// HandleImage runs the pipeline on an already decoded image.
func (h *Handler) HandleImage(img image.Image) error {
	h.reset()
	start := time.Now()
	m := MatrixFromImage(img)
	h.matrix = m
	h.state = StateLoaded
	h.log.Info("image loaded", "width", m.W, "height", m.H, "elapsed", time.Since(start))
	return h.run()
}

func (h *Handler) reset() {
	h.state = StateEmpty
	h.matrix = nil
	h.colors = nil
	h.index = nil
	h.format = ""
}

func (h *Handler) run() error {
	start := time.Now()
	h.index = BuildIndex(h.matrix)
	h.colors = h.index.Colors()
	SortColors(h.colors)
	h.state = StateIndexed
	h.log.Info("color index built", "colors", len(h.colors), "elapsed", time.Since(start))

	start = time.Now()
	red, err := h.reducer.Reduce(h.colors)
	if err != nil {
		return fmt.Errorf("could not reduce colors: %w", err)
	}
	folded, err := h.index.Apply(red.Mapping)
	if err != nil {
		return fmt.Errorf("could not fold color index: %w", err)
	}
	if err := folded.Rewrite(h.matrix); err != nil {
		return fmt.Errorf("could not rewrite pixel matrix: %w", err)
	}
	h.index = folded
	h.colors = slices.Clone(red.Palette)
	SortColors(h.colors)
	h.state = StateReduced
	h.log.Info("palette reduced", "palette", len(red.Palette), "elapsed", time.Since(start))
	return nil
}

// State reports the last completed pipeline stage.
func (h *Handler) State() State { return h.state }

// Matrix exposes the pixel matrix: the decoded pixels once loaded, the
// rewritten pixels once reduced. Nil while empty.
func (h *Handler) Matrix() *Matrix { return h.matrix }

// Colors returns the current unique color set in canonical order: the
// original colors after indexing, the reduced palette after reduction.
func (h *Handler) Colors() []Color { return slices.Clone(h.colors) }

// Index exposes the color index matching the current state.
func (h *Handler) Index() *ColorIndex { return h.index }

// Format names the decoded image format, empty until a file was handled.
func (h *Handler) Format() string { return h.format }
