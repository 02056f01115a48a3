package simulation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/stimulus"
)

// Player decides which modalities to confirm at a step. lag is the pair
// shown n steps earlier; hasLag is false for the first n steps.
type Player interface {
	Respond(view session.StepView, lag stimulus.Pair, hasLag bool) []stimulus.Modality
}

// Perfect confirms exactly the repeating modalities.
type Perfect struct{}

// Respond implements Player.
func (Perfect) Respond(view session.StepView, lag stimulus.Pair, hasLag bool) []stimulus.Modality {
	if !hasLag {
		return nil
	}
	var out []stimulus.Modality
	for _, m := range stimulus.Modalities {
		if view.Pair[m] == lag[m] {
			out = append(out, m)
		}
	}
	return out
}

// Silent never confirms anything.
type Silent struct{}

// Respond implements Player.
func (Silent) Respond(session.StepView, stimulus.Pair, bool) []stimulus.Modality {
	return nil
}

// Accurate answers each modality correctly Percent percent of the time and
// gets it wrong otherwise: a missed match or a false alarm.
type Accurate struct {
	Percent int
	Source  stimulus.RandomSource
}

// Respond implements Player.
func (a Accurate) Respond(view session.StepView, lag stimulus.Pair, hasLag bool) []stimulus.Modality {
	if !hasLag {
		return nil
	}
	var out []stimulus.Modality
	for _, m := range stimulus.Modalities {
		match := view.Pair[m] == lag[m]
		if a.Source.Intn(100) >= a.Percent {
			match = !match
		}
		if match {
			out = append(out, m)
		}
	}
	return out
}

// ParsePlayer maps a strategy name to a Player. Accepted names are
// "perfect", "silent" and "accurate:<percent>".
func ParsePlayer(name string, src stimulus.RandomSource) (Player, error) {
	switch {
	case name == "perfect":
		return Perfect{}, nil
	case name == "silent":
		return Silent{}, nil
	case strings.HasPrefix(name, "accurate:"):
		pct, err := strconv.Atoi(strings.TrimPrefix(name, "accurate:"))
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("invalid accuracy in %q (want 0-100)", name)
		}
		if src == nil {
			src = stimulus.NewRandomSource()
		}
		return Accurate{Percent: pct, Source: src}, nil
	}
	return nil, fmt.Errorf("unknown player %q (valid: perfect, silent, accurate:<percent>)", name)
}
