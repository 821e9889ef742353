package capture

import (
	"context"
	"time"

	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
)

// State is the capture session lifecycle.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateReady         State = "READY"
	StateInvalidated   State = "INVALIDATED"
)

// Fix is one geolocation reading.
type Fix struct {
	Lat       float64
	Lng       float64
	AccuracyM float64
}

// Camera owns the device video stream. Acquire fails on permission
// denial or missing hardware; Frame freezes the live stream into a
// still image.
type Camera interface {
	Acquire(ctx context.Context) error
	Frame(ctx context.Context) ([]byte, error)
	Release()
}

// Locator returns the device's current position or fails with a reason.
type Locator interface {
	Locate(ctx context.Context) (Fix, error)
}

// Visibility reports whether the page is currently foregrounded.
type Visibility interface {
	Visible() bool
}

// Proof is a frozen frame plus the hardware evidence bound to it.
// Camera is always true here; file-picker uploads go through backfill.
type Proof struct {
	Image      []byte
	GPS        Fix
	CapturedAt time.Time
	Camera     bool
}

// Session owns the camera/GPS hardware for one capture workflow. It is
// owned by a single caller; cross-viewer consistency comes from the
// usage-event subscription, not shared sessions.
type Session struct {
	state        State
	acquiredAt   time.Time
	lastHiddenAt time.Time

	camera   Camera
	locator  Locator
	vis      Visibility
	now      func() time.Time
	proofBuf *Proof
}

// Option tweaks session construction.
type Option func(*Session)

// WithClock injects a deterministic clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession builds an UNINITIALIZED session around the device APIs.
func NewSession(camera Camera, locator Locator, vis Visibility, opts ...Option) *Session {
	s := &Session{
		state:   StateUninitialized,
		camera:  camera,
		locator: locator,
		vis:     vis,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Acquire requests the device camera. Success moves the session to
// READY and stamps the acquisition time; failure leaves the prior state
// untouched so the caller can retry.
func (s *Session) Acquire(ctx context.Context) error {
	if s.camera == nil {
		return pkgerrors.New(pkgerrors.CodeHardware, "camera access required; gallery uploads are not allowed")
	}
	if err := s.camera.Acquire(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeHardware, err, "camera access required; gallery uploads are not allowed")
	}
	s.state = StateReady
	s.acquiredAt = s.now()
	return nil
}

// VisibilityLost invalidates the session regardless of prior state and
// records when the page left the foreground.
func (s *Session) VisibilityLost() {
	s.state = StateInvalidated
	s.lastHiddenAt = s.now()
}

// Capture freezes the current frame into a Proof. It is rejected when
// the session is not READY, the page is hidden, or the stream predates
// the most recent backgrounding event. The proof stays buffered on the
// session until ClearProof.
func (s *Session) Capture(ctx context.Context) (*Proof, error) {
	if s.vis != nil && !s.vis.Visible() {
		return nil, pkgerrors.New(pkgerrors.CodeHardware, "page is not foregrounded")
	}
	if s.state != StateReady {
		return nil, pkgerrors.New(pkgerrors.CodeHardware, "camera session not ready")
	}
	// Stale-stream guard: a frame from before the last backgrounding
	// event must never become proof.
	if !s.lastHiddenAt.IsZero() && s.lastHiddenAt.After(s.acquiredAt) {
		s.state = StateInvalidated
		return nil, pkgerrors.New(pkgerrors.CodeHardware, "camera stream is stale; reacquire the camera")
	}

	frame, err := s.camera.Frame(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeHardware, err, "freezing camera frame")
	}

	if s.locator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeHardware, "GPS required")
	}
	fix, err := s.locator.Locate(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeHardware, err, "GPS required")
	}

	proof := &Proof{
		Image:      frame,
		GPS:        fix,
		CapturedAt: s.now(),
		Camera:     true,
	}
	s.proofBuf = proof
	return proof, nil
}

// Proof returns the buffered proof from the last successful capture.
func (s *Session) Proof() *Proof {
	return s.proofBuf
}

// ClearProof drops the buffered proof. Called after a successful usage
// submission so a stale photo cannot back a second one.
func (s *Session) ClearProof() {
	s.proofBuf = nil
}

// Close releases the camera.
func (s *Session) Close() {
	if s.camera != nil {
		s.camera.Release()
	}
	s.proofBuf = nil
	s.state = StateInvalidated
}
