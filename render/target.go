// Package render turns decoded voxel models into flat pixel-art sprites:
// four isometric corner views and six orthographic sides.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSelection reports a model, view or side that is not in the valid set.
var ErrSelection = errors.New("invalid selection")

// SelectionError fails a single render request. It unwraps to ErrSelection.
type SelectionError struct {
	What  string
	Value string
	Valid string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%v: %s %q (valid: %s)", ErrSelection, e.What, e.Value, e.Valid)
}

func (e *SelectionError) Unwrap() error { return ErrSelection }

// Target is what a render projects onto: a View or a Side.
type Target interface {
	Name() string
}

// View is an isometric corner camera showing the top and two vertical faces.
// Views are 90 degree horizontal rotations of each other, in order.
type View uint8

const (
	ViewFrontRight View = iota
	ViewRightBack
	ViewBackLeft
	ViewLeftFront
	numViews
)

var viewNames = [numViews]string{"front-right", "right-back", "back-left", "left-front"}

// Name returns the view name, screen-left face first.
func (v View) Name() string {
	if v >= numViews {
		return "view(" + strconv.Itoa(int(v)) + ")"
	}
	return viewNames[v]
}

func (v View) String() string { return v.Name() }

// AllViews lists every view in rotation order.
func AllViews() []View {
	return []View{ViewFrontRight, ViewRightBack, ViewBackLeft, ViewLeftFront}
}

// ParseView resolves a view name.
func ParseView(s string) (View, error) {
	for i, name := range viewNames {
		if s == name {
			return View(i), nil
		}
	}
	return 0, &SelectionError{What: "view", Value: s, Valid: strings.Join(viewNames[:], ", ")}
}

// Side is an axis aligned orthographic camera looking at one face.
type Side uint8

const (
	SideTop Side = iota
	SideFront
	SideLeft
	SideRight
	SideBack
	SideBottom
	numSides
)

var sideNames = [numSides]string{"top", "front", "left", "right", "back", "bottom"}

func (s Side) Name() string {
	if s >= numSides {
		return "side(" + strconv.Itoa(int(s)) + ")"
	}
	return sideNames[s]
}

func (s Side) String() string { return s.Name() }

// AllSides lists every side.
func AllSides() []Side {
	return []Side{SideTop, SideFront, SideLeft, SideRight, SideBack, SideBottom}
}

// ParseSide resolves a side name.
func ParseSide(s string) (Side, error) {
	for i, name := range sideNames {
		if s == name {
			return Side(i), nil
		}
	}
	return 0, &SelectionError{What: "side", Value: s, Valid: strings.Join(sideNames[:], ", ")}
}

// ParseModels resolves a model index. "all" and "" select every model and
// return nil.
func ParseModels(s string) ([]int, error) {
	if s == "" || s == "all" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, &SelectionError{What: "model", Value: s, Valid: "all or an index from 0"}
	}
	return []int{n}, nil
}

// Pitch is how far an Oblique camera tilts down from level.
type Pitch uint8

const (
	Pitch45 Pitch = iota
	Pitch22
	numPitches
)

var pitchNames = [numPitches]string{"45", "22.5"}

func (p Pitch) String() string {
	if p >= numPitches {
		return "pitch(" + strconv.Itoa(int(p)) + ")"
	}
	return pitchNames[p]
}

// Oblique looks at one vertical side from above: every voxel shows a strip
// of its top over its side face. Top and bottom have no oblique camera.
type Oblique struct {
	Side  Side
	Pitch Pitch
}

// Name returns "<side>-<pitch>", e.g. "front-22.5".
func (o Oblique) Name() string { return o.Side.Name() + "-" + o.Pitch.String() }

func (o Oblique) valid() bool {
	return o.Pitch < numPitches && o.Side < numSides && o.Side != SideTop && o.Side != SideBottom
}

// Dimetric is a corner view drawn with tall sprites: one row of top over
// three rows of side faces, so walls read taller than in the View.
type Dimetric View

// Name returns "<view>-dimetric".
func (d Dimetric) Name() string { return View(d).Name() + "-dimetric" }

// AllExtras lists the oblique cameras of the four vertical sides, then the
// dimetric corners.
func AllExtras() []Target {
	var out []Target
	for _, s := range []Side{SideFront, SideLeft, SideRight, SideBack} {
		for p := Pitch(0); p < numPitches; p++ {
			out = append(out, Oblique{Side: s, Pitch: p})
		}
	}
	for _, v := range AllViews() {
		out = append(out, Dimetric(v))
	}
	return out
}

// ParseExtra resolves the name of an Oblique or Dimetric target.
func ParseExtra(s string) (Target, error) {
	var names []string
	for _, t := range AllExtras() {
		if t.Name() == s {
			return t, nil
		}
		names = append(names, t.Name())
	}
	return nil, &SelectionError{What: "extra", Value: s, Valid: strings.Join(names, ", ")}
}

// Face is the visible face a pixel was seen through.
type Face uint8

const (
	FaceTop Face = iota
	FaceLeft
	FaceRight
)

func (f Face) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	}
	return "face(" + strconv.Itoa(int(f)) + ")"
}
