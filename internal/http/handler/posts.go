package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crosspost/internal/auth"
	"crosspost/internal/post"
	"crosspost/internal/publish"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type PostHandler struct {
	Svc  *post.Service
	Repo *post.Repo
	Pub  *publish.Service
}

type mediaReq struct {
	URL     string `json:"url" validate:"required,url"`
	Kind    string `json:"kind" validate:"required,oneof=image video gif"`
	AltText string `json:"alt_text"`
}

type createPostReq struct {
	Content     string     `json:"content"`
	Link        string     `json:"link" validate:"omitempty,url"`
	Accounts    []uint64   `json:"accounts" validate:"required,min=1"`
	Media       []mediaReq `json:"media" validate:"dive"`
	ScheduledAt *string    `json:"scheduled_at"` // RFC3339 optional
}

type updatePostReq struct {
	Content     *string  `json:"content"`
	Link        *string  `json:"link" validate:"omitempty,url"`
	Accounts    []uint64 `json:"accounts"`
	ScheduledAt *string  `json:"scheduled_at"` // RFC3339; "" clears the schedule
}

type targetDTO struct {
	ID           uint64     `json:"id"`
	AccountID    uint64     `json:"account_id"`
	Status       string     `json:"status"`
	ExternalID   *string    `json:"external_id,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
}

type mediaDTO struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	AltText string `json:"alt_text,omitempty"`
}

type postDTO struct {
	ID          uint64      `json:"id"`
	Content     string      `json:"content"`
	Link        string      `json:"link,omitempty"`
	Tags        []string    `json:"tags"`
	Status      string      `json:"status"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Targets     []targetDTO `json:"targets"`
	Media       []mediaDTO  `json:"media"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Per-target status always goes out with the post so partial failure is
// visible even when the overall status says published.
func toPostDTO(p *post.Post) postDTO {
	out := postDTO{
		ID:          p.ID,
		Content:     p.Content,
		Link:        p.Link,
		Tags:        []string(p.Tags),
		Status:      p.Status,
		ScheduledAt: p.ScheduledAt,
		CompletedAt: p.CompletedAt,
		Targets:     []targetDTO{},
		Media:       []mediaDTO{},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, t := range p.Targets {
		out.Targets = append(out.Targets, targetDTO{
			ID:           t.ID,
			AccountID:    t.SocialAccountID,
			Status:       t.Status,
			ExternalID:   t.ExternalID,
			ErrorMessage: t.ErrorMessage,
			SentAt:       t.SentAt,
		})
	}
	for _, m := range p.Media {
		out.Media = append(out.Media, mediaDTO{URL: m.URL, Kind: m.Kind, AltText: m.AltText})
	}
	return out
}

func parseTimePtr(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createPostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	scheduledAt, ok := parseTimePtr(req.ScheduledAt)
	if !ok {
		http.Error(w, "invalid scheduled_at (RFC3339)", http.StatusBadRequest)
		return
	}

	in := post.CreatePostInput{
		Content:     strings.TrimSpace(req.Content),
		Link:        strings.TrimSpace(req.Link),
		AccountIDs:  req.Accounts,
		ScheduledAt: scheduledAt,
	}
	for _, m := range req.Media {
		in.Media = append(in.Media, post.MediaInput{URL: m.URL, Kind: m.Kind, AltText: m.AltText})
	}

	p, err := h.Svc.Create(r.Context(), uid, in)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrNoTargets), errors.Is(err, post.ErrPastSchedule):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toPostDTO(p))
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	f := post.ListFilter{
		Status: strings.TrimSpace(strings.ToLower(q.Get("status"))),
		Tag:    strings.TrimSpace(strings.ToLower(q.Get("tag"))),
	}
	if v := strings.TrimSpace(q.Get("account")); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.AccountID = id
		}
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	rows, total, err := h.Svc.List(r.Context(), uid, f)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]postDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toPostDTO(&rows[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"posts": out,
		"total": total,
	})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := postID(w, r)
	if !ok {
		return
	}

	p, err := h.Repo.Get(r.Context(), id, uid)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPostDTO(p))
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := postID(w, r)
	if !ok {
		return
	}

	var req updatePostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	in := post.UpdatePostInput{
		Content:    req.Content,
		Link:       req.Link,
		AccountIDs: req.Accounts,
	}
	if req.ScheduledAt != nil {
		if strings.TrimSpace(*req.ScheduledAt) == "" {
			in.ClearSchedule = true
		} else {
			t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
			if err != nil {
				http.Error(w, "invalid scheduled_at (RFC3339)", http.StatusBadRequest)
				return
			}
			in.ScheduledAt = &t
		}
	}

	p, err := h.Svc.Update(r.Context(), id, uid, in)
	if err != nil {
		writePostErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPostDTO(p))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), id, uid); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleReq struct {
	ScheduledAt string `json:"scheduled_at" validate:"required"`
}

func (h *PostHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := postID(w, r)
	if !ok {
		return
	}

	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		http.Error(w, "invalid scheduled_at (RFC3339)", http.StatusBadRequest)
		return
	}

	p, err := h.Svc.Schedule(r.Context(), id, uid, at)
	if err != nil {
		writePostErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPostDTO(p))
}

// PublishNow is the manual trigger: publish immediately, no due-time
// check.
func (h *PostHandler) PublishNow(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := postID(w, r)
	if !ok {
		return
	}

	p, err := h.Pub.PublishNow(r.Context(), id, uid)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, post.ErrAlreadyPublished):
			http.Error(w, "post already published", http.StatusConflict)
		case errors.Is(err, publish.ErrBusy):
			http.Error(w, "post is being published", http.StatusConflict)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPostDTO(p))
}

func postID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writePostErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, post.ErrAlreadyPublished):
		http.Error(w, "post already published", http.StatusConflict)
	case errors.Is(err, post.ErrNoTargets), errors.Is(err, post.ErrPastSchedule):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
