// Package explorer runs the interactive ocean: it turns viewer input into
// navigation, hover, proximity and open requests.
package explorer

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kilupskalvis/vimlantis/internal/models"
	"github.com/kilupskalvis/vimlantis/internal/nav"
	"github.com/kilupskalvis/vimlantis/internal/scene"
)

// ProximityRadius is how close the boat must be to a marker to offer it.
const ProximityRadius = 15

const defaultNotifyFor = 3 * time.Second

// Options configure a Session. Zero values select defaults.
type Options struct {
	Aspect    float32
	Settings  *Settings
	Rand      scene.Random
	Logger    *slog.Logger
	NotifyFor time.Duration
	Now       func() time.Time
}

// Session owns the state of one viewer: navigation, the placed markers,
// the boat and the camera. It is not safe for concurrent use; Tick and the
// navigation methods must be called from one goroutine.
type Session struct {
	nav    *nav.State
	world  *scene.World
	camera scene.Camera
	boat   Boat

	settings  Settings
	opener    Opener
	logger    *slog.Logger
	now       func() time.Time
	notifyFor time.Duration

	hovered   *scene.PlacedMarker
	proximity *scene.PlacedMarker

	results      chan openResult
	pending      sync.WaitGroup
	notification *Notification
	closed       bool
}

// NewSession creates a session showing the root of tree.
func NewSession(tree []models.TreeNode, opener Opener, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	settings := DefaultSettings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}
	aspect := opts.Aspect
	if aspect <= 0 {
		aspect = 16.0 / 9.0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifyFor := opts.NotifyFor
	if notifyFor <= 0 {
		notifyFor = defaultNotifyFor
	}

	s := &Session{
		nav:       nav.New(tree),
		world:     scene.NewWorld(rng),
		camera:    scene.DefaultCamera(aspect),
		settings:  settings,
		opener:    opener,
		logger:    logger,
		now:       now,
		notifyFor: notifyFor,
		results:   make(chan openResult, resultBuffer),
	}
	s.rebuild()
	return s
}

// Tick advances the session by one frame.
func (s *Session) Tick(in Input) {
	if s.closed {
		return
	}
	now := s.now()
	s.drainResults(now)

	s.boat.Steer(in.Held, s.settings.BoatSpeed)
	follow(&s.camera, &s.boat)

	s.updateHover(in)
	s.bob(in.Time)
	s.updateProximity()

	// At most one activation per tick; a click wins over the key.
	switch {
	case in.Click && s.hovered != nil:
		s.activate(s.hovered)
	case in.Pressed.Has(KeyActivate) && s.proximity != nil:
		s.activate(s.proximity)
	}
	if in.Pressed.Has(KeyBack) {
		s.Back()
	}

	if s.notification != nil && !now.Before(s.notification.Expires) {
		s.notification = nil
	}
}

// Close stops the session. In-flight opens finish on their own; their
// results are discarded.
func (s *Session) Close() {
	s.closed = true
	s.hovered = nil
	s.proximity = nil
	s.world.Clear()
}

// Wait blocks until every open request started so far has finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Activate opens a file marker or sails into a directory marker.
func (s *Session) Activate(m *scene.PlacedMarker) error {
	if m == nil {
		return nil
	}
	return s.activate(m)
}

func (s *Session) activate(m *scene.PlacedMarker) error {
	switch m.Node.Kind {
	case models.KindDirectory:
		if err := s.nav.DescendInto(m.Node); err != nil {
			s.logger.Warn("cannot enter directory", "path", m.Node.Path, "error", err)
			return fmt.Errorf("activate %s: %w", m.Node.Path, err)
		}
		s.rebuild()
	case models.KindFile:
		s.openFile(m.Node)
	default:
		return fmt.Errorf("activate %s: unknown kind %d", m.Node.Path, m.Node.Kind)
	}
	return nil
}

// Back goes up one directory. It reports false at the root.
func (s *Session) Back() bool {
	if !s.nav.AscendOne() {
		return false
	}
	s.rebuild()
	return true
}

// JumpToRoot returns to the top-level directory.
func (s *Session) JumpToRoot() {
	s.nav.JumpToRoot()
	s.rebuild()
}

// SelectBreadcrumb jumps to the directory named by c.
func (s *Session) SelectBreadcrumb(c nav.Breadcrumb) error {
	if err := s.nav.SelectBreadcrumb(c); err != nil {
		return err
	}
	s.rebuild()
	return nil
}

// NavigateTo shows the directory at the slash separated path rel. On error
// the session is left at the root.
func (s *Session) NavigateTo(rel string) error {
	err := s.nav.DescendPath(rel)
	s.rebuild()
	return err
}

// Reload replaces the tree, keeping the current directory when it still
// exists and falling back to the root otherwise.
func (s *Session) Reload(tree []models.TreeNode) {
	var rel string
	if dir, ok := s.nav.CurrentDir(); ok {
		rel = dir.Path
	}
	s.nav = nav.New(tree)
	if rel != "" {
		if err := s.nav.DescendPath(rel); err != nil {
			s.logger.Debug("current directory vanished, back to root", "path", rel)
		}
	}
	s.rebuild()
}

func (s *Session) rebuild() {
	s.hovered = nil
	s.proximity = nil
	s.world.Rebuild(s.nav.Current())
}

func (s *Session) updateHover(in Input) {
	var hit *scene.PlacedMarker
	if in.HasPointer {
		hit, _ = s.world.Pick(s.camera.Ray(in.PointerX, in.PointerY))
	}
	if hit == s.hovered {
		return
	}
	if s.hovered != nil {
		s.hovered.Scale = 1
	}
	if hit != nil {
		hit.Scale = scene.HoverScale
	}
	s.hovered = hit
}

func (s *Session) bob(t float32) {
	for _, m := range s.world.Markers() {
		if m.Shape == scene.ShapeBuoy {
			m.Y = scene.BobHeight(t, m.X)
		}
	}
}

func (s *Session) updateProximity() {
	m, dist, ok := s.world.Nearest(s.boat.X, s.boat.Z)
	if ok && dist < ProximityRadius {
		s.proximity = m
		return
	}
	s.proximity = nil
}

// Hovered returns the marker under the pointer, if any.
func (s *Session) Hovered() *scene.PlacedMarker {
	return s.hovered
}

// Proximity returns the marker offered for activation, if any.
func (s *Session) Proximity() *scene.PlacedMarker {
	return s.proximity
}

// Affordance is the prompt shown for the proximity marker, or "".
func (s *Session) Affordance() string {
	if s.proximity == nil {
		return ""
	}
	return "to open " + s.proximity.Node.Name
}

// Notification returns the live transient message, if any.
func (s *Session) Notification() *Notification {
	return s.notification
}

// Markers returns the markers of the displayed directory.
func (s *Session) Markers() []*scene.PlacedMarker {
	return s.world.Markers()
}

// Generation changes whenever the markers were rebuilt.
func (s *Session) Generation() int {
	return s.world.Generation()
}

// Breadcrumbs returns the path bar for the displayed directory.
func (s *Session) Breadcrumbs() []nav.Breadcrumb {
	return s.nav.Breadcrumbs()
}

// Depth returns how many directories deep the session is.
func (s *Session) Depth() int {
	return s.nav.Depth()
}

// Boat returns the player vessel.
func (s *Session) Boat() *Boat {
	return &s.boat
}

// Settings returns the viewer preferences.
func (s *Session) Settings() Settings {
	return s.settings
}

// Minimap returns the blips for a width x height minimap, or nil when the
// minimap is hidden.
func (s *Session) Minimap(width, height float32) []Blip {
	if !s.settings.ShowMinimap {
		return nil
	}
	return Minimap(s.world.Markers(), &s.boat, width, height)
}
