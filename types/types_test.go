package types

import (
	"errors"
	"math"
	"testing"

	"skillcode-go/errcode"
)

func frame(delay float64, pos ...float64) Frame {
	p := map[string]float64{}
	names := []string{"a", "b", "c", "d"}
	for i, v := range pos {
		p[names[i]] = v
	}
	return Frame{Positions: p, Delay: delay}
}

func TestSkillValidate(t *testing.T) {
	ok := Skill{Name: "wave", Frames: []Frame{frame(0.1, 0), frame(0.2, 45)}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid skill rejected: %v", err)
	}

	cases := []Skill{
		{Name: "", Frames: []Frame{frame(0.1, 0)}},
		{Name: "empty", Frames: nil},
		{Name: "zero-delay", Frames: []Frame{frame(0, 0)}},
		{Name: "neg-delay", Frames: []Frame{frame(-1, 0)}},
		{Name: "inf-delay", Frames: []Frame{frame(math.Inf(1), 0)}},
		{Name: "nan-pos", Frames: []Frame{frame(0.1, math.NaN())}},
		{Name: "no-positions", Frames: []Frame{{Delay: 0.1}}},
	}
	for _, s := range cases {
		if err := s.Validate(); !errors.Is(err, errcode.CorruptSkill) {
			t.Errorf("skill %q: expected corrupt_skill, got %v", s.Name, err)
		}
	}
}

func TestFrameCloneIsDeep(t *testing.T) {
	f := frame(0.1, 1, 2)
	c := f.Clone()
	c.Positions["a"] = 99
	if f.Positions["a"] != 1 {
		t.Fatal("clone shares the positions map")
	}
}

func TestSkillEqual(t *testing.T) {
	a := Skill{Name: "s", Frames: []Frame{frame(0.1, 1), frame(0.2, 2)}}
	b := Skill{Name: "s", Frames: []Frame{frame(0.1, 1), frame(0.2, 2)}}
	if !a.Equal(b) {
		t.Fatal("identical skills reported unequal")
	}
	b.Frames[1].Delay = 0.3
	if a.Equal(b) {
		t.Fatal("different delays reported equal")
	}
}
