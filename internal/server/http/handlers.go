package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/LeoDT/log-majin/internal/commit"
	"github.com/LeoDT/log-majin/internal/logstore"
	"github.com/LeoDT/log-majin/internal/pager"
	"github.com/LeoDT/log-majin/internal/revision"
	"github.com/LeoDT/log-majin/internal/template"
	logpkg "github.com/LeoDT/log-majin/pkg/log"
)

type createTemplateRequest struct {
	Name  string         `json:"name"`
	Slots template.Slots `json:"slots"`
	Color string         `json:"color"`
	Icon  string         `json:"icon"`
}

func (r createTemplateRequest) validate(maxSlots int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Slots, validation.Required, validation.Length(1, maxSlots)),
	)
}

func (s *Server) handleTemplateCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	var t template.Template
	if req.Name == "" && len(req.Slots) == 0 {
		// empty request provisions the starter template
		t = template.Default(s.rt.IDs(), now)
	} else {
		if err := req.validate(s.rt.Config().Limits.MaxSlotsPerTemplate); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		t = template.Template{
			ID:         s.rt.IDs().Next().String(),
			Name:       req.Name,
			Slots:      req.Slots,
			Color:      req.Color,
			Icon:       req.Icon,
			CreateAtMs: now.UnixMilli(),
			UpdateAtMs: now.UnixMilli(),
		}
	}
	if err := s.rt.Templates().Put(t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("template created", logpkg.Str("template_id", t.ID), logpkg.Str("name", t.Name))
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTemplateUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}
	var t template.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	prev, err := s.rt.Templates().Get(t.ID)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	t.CreateAtMs = prev.CreateAtMs
	t.ArchiveAtMs = prev.ArchiveAtMs
	t.UpdateAtMs = time.Now().UnixMilli()
	if len(t.Slots) > s.rt.Config().Limits.MaxSlotsPerTemplate {
		writeError(w, http.StatusBadRequest, errors.New("too many slots"))
		return
	}
	if err := s.rt.Templates().Put(t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTemplateArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}
	var req struct {
		TemplateID string `json:"templateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, errors.New("templateId is required"))
		return
	}
	t, err := s.rt.Templates().Archive(req.TemplateID, time.Now())
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTemplateList(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	list, err := s.rt.Templates().List(includeArchived)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []template.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": list})
}

type commitRequest struct {
	TemplateID string               `json:"templateId"`
	SlotValues []logstore.SlotValue `json:"slotValues"`
}

func (c commitRequest) validate(maxValueBytes int) error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.TemplateID, validation.Required),
	); err != nil {
		return err
	}
	for _, v := range c.SlotValues {
		if v.SlotID == "" {
			return errors.New("slot value missing slotId")
		}
		if len(v.Value) > maxValueBytes {
			return errors.New("slot value too large")
		}
	}
	return nil
}

func (s *Server) handleLogCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(s.rt.Config().Limits.MaxValueBytes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := s.rt.Templates().Get(req.TemplateID)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	if err := commit.ValidateSlotValues(t, req.SlotValues); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.rt.Committer().Commit(r.Context(), t, req.SlotValues)
	if err != nil {
		if errors.Is(err, commit.ErrTemplateArchived) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleLogCommitNoInput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}
	var req struct {
		TemplateID string `json:"templateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := s.rt.Templates().Get(req.TemplateID)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	l, err := s.rt.Committer().CommitNoInput(r.Context(), t)
	if err != nil {
		if errors.Is(err, commit.ErrNeedsInput) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if errors.Is(err, commit.ErrTemplateArchived) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type pageResponse struct {
	Logs      []logstore.Log `json:"logs"`
	Cursor    string         `json:"cursor"`
	Exhausted bool           `json:"exhausted"`
}

func (s *Server) handleLogPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	size := s.rt.Config().DefaultPageSize
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("size must be a positive integer"))
			return
		}
		if max := s.rt.Config().Limits.MaxPageSize; n > max {
			n = max
		}
		size = n
	}

	opts := []pager.Option{pager.WithPageSize(size)}
	if expr := q.Get("filter"); expr != "" {
		opts = append(opts, pager.WithFilter(expr))
	}
	p, err := s.rt.NewPager(opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var logs []logstore.Log
	if cursor := q.Get("cursor"); cursor != "" {
		if err := p.Resume(cursor); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		logs, err = p.LoadNextPage(r.Context())
	} else {
		logs, err = p.Init(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if logs == nil {
		logs = []logstore.Log{}
	}
	writeJSON(w, http.StatusOK, pageResponse{Logs: logs, Cursor: p.Cursor(), Exhausted: len(logs) < size})
}

func (s *Server) handleRevisionGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	rev, err := s.rt.Revisions().Get(id)
	if err != nil {
		if errors.Is(err, revision.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	slotID := r.URL.Query().Get("slotId")
	if slotID == "" {
		writeError(w, http.StatusBadRequest, errors.New("slotId is required"))
		return
	}
	hist, err := s.rt.History().Get(slotID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slotId": slotID, "history": hist})
}

func writeTemplateError(w http.ResponseWriter, err error) {
	if errors.Is(err, template.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
