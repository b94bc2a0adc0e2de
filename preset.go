package stompbox

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyPreset bulk-applies stage settings. Stages not named in the
// preset are disabled so restoring a shared configuration is
// deterministic. The whole preset is validated before any stage is
// touched; an invalid entry rejects the call without mutating state.
func (e *Engine) ApplyPreset(settings []StageSetting) error {
	for _, s := range settings {
		if !validStage(s.ID) {
			return fmt.Errorf("%w: %q", ErrUnknownStage, s.ID)
		}
		if s.Amount < 0 || s.Amount > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidAmount, s.Amount)
		}
	}
	if err := e.ensureReady(); err != nil {
		return err
	}
	named := make(map[StageID]StageSetting, len(settings))
	for _, s := range settings {
		named[s.ID] = s
	}
	for _, id := range StageIDs() {
		e.mu.Lock()
		stage, ok := e.stages[id]
		e.mu.Unlock()
		if !ok {
			return ErrClosed
		}
		if s, ok := named[id]; ok {
			stage.SetAmount(s.Amount)
			stage.SetEnabled(s.Enabled)
		} else {
			stage.SetEnabled(false)
		}
	}
	return nil
}

// Preset renders the engine's enabled stages in the interchange format.
func (e *Engine) Preset() (string, error) {
	var settings []StageSetting
	for _, id := range StageIDs() {
		st, err := e.StageState(id)
		if err != nil {
			return "", err
		}
		settings = append(settings, st)
	}
	return FormatPreset(settings), nil
}

// FormatPreset renders enabled stages as comma-separated "id:amount"
// pairs; disabled stages are omitted.
func FormatPreset(settings []StageSetting) string {
	var parts []string
	for _, s := range settings {
		if s.Enabled {
			parts = append(parts, string(s.ID)+":"+strconv.Itoa(s.Amount))
		}
	}
	return strings.Join(parts, ",")
}

// ParsePreset parses the "id:amount,id:amount" interchange format. Every
// named stage comes back enabled; empty segments are skipped.
func ParsePreset(preset string) ([]StageSetting, error) {
	var settings []StageSetting
	for _, part := range strings.Split(preset, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, amountStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("stompbox: malformed preset entry %q", part)
		}
		sid := StageID(strings.TrimSpace(id))
		if !validStage(sid) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, sid)
		}
		amount, err := strconv.Atoi(strings.TrimSpace(amountStr))
		if err != nil {
			return nil, fmt.Errorf("stompbox: malformed preset entry %q", part)
		}
		if amount < 0 || amount > 100 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
		}
		settings = append(settings, StageSetting{ID: sid, Enabled: true, Amount: amount})
	}
	return settings, nil
}
