package service

import (
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"
)

// HintVisible decides whether hint k is shown. Nothing is shown before the
// task opens; everything is shown once it expired or was solved.
func HintVisible(k int, status model.TaskStatus, res *model.TaskResult) bool {
	switch status {
	case model.TaskExpired:
		return true
	case model.TaskClosed:
		return false
	}
	if res == nil {
		return false
	}
	return res.Solved || res.HintsUsed >= k
}

// MediaVisible applies the owning hint's rule. Hint 0 media go with the
// task itself.
func MediaVisible(m *model.TaskMedia, status model.TaskStatus, res *model.TaskResult) bool {
	if m.HintNumber == 0 {
		return status != model.TaskClosed
	}
	return HintVisible(m.HintNumber, status, res)
}

// CanUnlock checks whether one more hint may be unlocked out of total.
func CanUnlock(status model.TaskStatus, res *model.TaskResult, total int) error {
	if status != model.TaskOpen {
		return util.ErrTaskNotOpen
	}
	if res.Solved {
		return util.ErrAlreadySolved
	}
	if res.HintsUsed >= total {
		return util.ErrNoHintsLeft
	}
	return nil
}

// FilterHints returns the visible hints in order, each carrying its visible
// media, plus the visible hint 0 media.
func FilterHints(hints []model.TaskHint, media []model.TaskMedia, status model.TaskStatus, res *model.TaskResult) ([]model.TaskHint, []model.TaskMedia) {
	byHint := make(map[int][]model.TaskMedia)
	general := []model.TaskMedia{}
	for i := range media {
		m := media[i]
		if !MediaVisible(&m, status, res) {
			continue
		}
		if m.HintNumber == 0 {
			general = append(general, m)
		} else {
			byHint[m.HintNumber] = append(byHint[m.HintNumber], m)
		}
	}

	visible := []model.TaskHint{}
	for _, h := range hints {
		if !HintVisible(h.HintNumber, status, res) {
			continue
		}
		h.Media = byHint[h.HintNumber]
		if h.Media == nil {
			h.Media = []model.TaskMedia{}
		}
		visible = append(visible, h)
	}
	return visible, general
}
