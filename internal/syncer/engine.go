// Package syncer walks the activity feed of every child the guardian has
// access to and downloads photo and video attachments into a local
// directory tree organized by child and calendar month. Downloads are
// idempotent by presence: an asset whose destination path already exists
// is never fetched or overwritten again, so an interrupted run can safely
// be repeated from scratch.
package syncer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/nestsync/nestsync/internal/brightwheel"
)

// DefaultPageSize is the number of activities requested per feed page.
const DefaultPageSize = 1000

// Options configures an Engine.
type Options struct {
	// Root is the directory under which per-child trees are created.
	// Defaults to the current directory.
	Root string
	// PageSize overrides the feed page size. Defaults to DefaultPageSize.
	PageSize int
}

// Stats summarizes one sync run.
type Stats struct {
	Children   int `json:"children"`
	Scanned    int `json:"scanned"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
}

// Engine performs one synchronization run over an authenticated session.
type Engine struct {
	svc      brightwheel.Service
	root     string
	pageSize int
}

// New creates an engine for the given session.
func New(svc brightwheel.Service, opts Options) *Engine {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Engine{
		svc:      svc,
		root:     opts.Root,
		pageSize: opts.PageSize,
	}
}

// Run synchronizes all children of the authenticated guardian. Work is
// strictly sequential: user lookup, roster, then per child a page-by-page
// walk of the activity feed. Any transport, protocol, or shape error
// aborts the run and is returned along with the stats gathered so far.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	runLog := log.With().Str("run_id", uuid.NewString()).Logger()

	userID, err := e.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	children, err := e.children(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Children: len(children)}
	for _, child := range children {
		clog := runLog.With().Str("child", child.DisplayName()).Logger()
		if err := e.syncChild(ctx, clog, child, stats); err != nil {
			return stats, err
		}
	}

	runLog.Info().
		Int("children", stats.Children).
		Int("scanned", stats.Scanned).
		Int("downloaded", stats.Downloaded).
		Int("skipped", stats.Skipped).
		Msg("sync complete")
	return stats, nil
}

func (e *Engine) currentUserID(ctx context.Context) (string, error) {
	body, err := e.svc.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return "", brightwheel.ErrUnexpectedShape.Msg("current-user response is not an object")
	}
	id := res.Get("object_id")
	if id.Type != gjson.String || id.String() == "" {
		return "", brightwheel.ErrUnexpectedShape.Msg("current-user response has no object_id")
	}
	return id.String(), nil
}

// children fetches and decodes the roster. Every entry must carry a
// nested student record with object_id, first_name, and last_name as
// strings; a malformed entry fails the whole run.
func (e *Engine) children(ctx context.Context, userID string) ([]Child, error) {
	body, err := e.svc.Children(ctx, userID)
	if err != nil {
		return nil, err
	}
	students := gjson.GetBytes(body, "students")
	if !students.IsArray() {
		return nil, brightwheel.ErrUnexpectedShape.Msg("roster response has no students array")
	}

	var children []Child
	var shapeErr error
	students.ForEach(func(_, entry gjson.Result) bool {
		child, err := childFromRosterEntry(entry)
		if err != nil {
			shapeErr = err
			return false
		}
		children = append(children, child)
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	return children, nil
}

func childFromRosterEntry(entry gjson.Result) (Child, error) {
	student := entry.Get("student")
	if !student.IsObject() {
		return Child{}, brightwheel.ErrUnexpectedShape.Msg("roster entry has no student record")
	}
	id := student.Get("object_id")
	first := student.Get("first_name")
	last := student.Get("last_name")
	if id.Type != gjson.String || id.String() == "" ||
		first.Type != gjson.String || last.Type != gjson.String {
		return Child{}, brightwheel.ErrUnexpectedShape.Msg("student record is missing object_id, first_name, or last_name")
	}
	return Child{
		ObjectID:  id.String(),
		FirstName: first.String(),
		LastName:  last.String(),
	}, nil
}

// syncChild walks the child's feed page by page. The feed is exhausted
// when a page returns fewer activities than requested; a partially filled
// final page is still processed before stopping.
func (e *Engine) syncChild(ctx context.Context, clog zerolog.Logger, child Child, stats *Stats) error {
	childDir := filepath.Join(e.root, child.DirName())
	if err := os.MkdirAll(childDir, 0o755); err != nil {
		return brightwheel.ErrFilesystem.MsgErr("failed to create child directory", err)
	}

	for page := 0; ; page++ {
		body, err := e.svc.ActivityPage(ctx, child.ObjectID, e.pageSize, page)
		if err != nil {
			return err
		}
		acts := gjson.GetBytes(body, "activities")
		if !acts.IsArray() {
			return brightwheel.ErrUnexpectedShape.Msg("activity page has no activities array")
		}

		entries := acts.Array()
		for _, act := range entries {
			if err := e.processActivity(ctx, clog, child, act, stats); err != nil {
				return err
			}
		}
		clog.Debug().Int("page", page).Int("count", len(entries)).Msg("processed activity page")

		if len(entries) < e.pageSize {
			return nil
		}
	}
}

// processActivity routes one feed entry. Photo descriptors win over video
// descriptors; an entry is never routed to both, and one with neither is
// not media and is passed over.
func (e *Engine) processActivity(ctx context.Context, clog zerolog.Logger, child Child, act gjson.Result, stats *Stats) error {
	stats.Scanned++

	photoURL := act.Get("media.image_url").String()
	videoURL := act.Get("video_info.downloadable_url").String()

	var rawURL, ext string
	switch {
	case photoURL != "":
		rawURL, ext = photoURL, "jpg"
	case videoURL != "":
		rawURL, ext = videoURL, "mp4"
	default:
		return nil
	}

	objectID := act.Get("object_id").String()
	if objectID == "" {
		return brightwheel.ErrUnexpectedShape.Msg("activity entry has no object_id")
	}
	createdAt, err := time.Parse(time.RFC3339, act.Get("created_at").String())
	if err != nil {
		return brightwheel.ErrUnexpectedShape.MsgErr("activity entry has no usable created_at", err)
	}

	dest := MediaPath(e.root, child, createdAt, objectID, ext)
	if _, err := os.Stat(dest); err == nil {
		// Already synchronized; presence alone decides, content is not
		// re-verified.
		stats.Skipped++
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return brightwheel.ErrFilesystem.MsgErr("failed to create month directory", err)
	}
	if err := e.svc.DownloadFile(ctx, rawURL, dest); err != nil {
		return err
	}
	stats.Downloaded++
	clog.Info().Str("path", dest).Msg("downloaded")
	return nil
}
