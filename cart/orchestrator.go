package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"totem/logger"
	"totem/model"
	"totem/workbook"
)

// ListUpdater applies partial updates to list items.
type ListUpdater interface {
	UpdateItem(ctx context.Context, listID, itemID string, fields model.Fields) error
}

type Invalidator interface {
	InvalidateCategory(cat model.Category)
}

type Notifier interface {
	Invoke(ctx context.Context, payload any) (map[string]any, error)
}

type Recorder interface {
	Append(ctx context.Context, rec model.SaveRecord) error
}

// Result of one save. MirrorWarnings and NotifyWarning are set when the list
// update succeeded but a secondary step did not.
type Result struct {
	RunID          string                    `json:"runId"`
	Status         model.SaveStatus          `json:"status"`
	Message        string                    `json:"message"`
	MirrorWarnings map[model.Category]string `json:"mirrorWarnings,omitempty"`
	NotifyWarning  string                    `json:"notifyWarning,omitempty"`
}

// Deps wires the orchestrator to its backends. Cache, Notifier and Journal
// may be nil.
type Deps struct {
	Lists    ListUpdater
	ListIDs  map[model.Category]string
	Mirrors  map[model.Category]*workbook.Mirror
	Cache    Invalidator
	Notifier Notifier
	Journal  Recorder
}

// Orchestrator runs batch saves of a cart. One save runs at a time.
type Orchestrator struct {
	cart *Cart
	deps Deps
	now  func() time.Time

	run    sync.Mutex
	mu     sync.Mutex
	status model.SaveStatus
	last   Result
}

func NewOrchestrator(c *Cart, deps Deps) *Orchestrator {
	return &Orchestrator{cart: c, deps: deps, now: time.Now, status: model.StatusIdle}
}

// Status returns the state of the current or last save.
func (o *Orchestrator) Status() (model.SaveStatus, Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.last
}

func (o *Orchestrator) setStatus(s model.SaveStatus, r Result) {
	o.mu.Lock()
	o.status = s
	o.last = r
	o.mu.Unlock()
}

type update struct {
	line    Line
	listID  string
	payload model.Fields
}

// Save writes every cart line to its list, mirrors mirrored categories into
// their spreadsheets and notifies the automation flow. Only a validation
// failure or a rejected list update ends in StatusError.
func (o *Orchestrator) Save(ctx context.Context, user model.User) Result {
	o.run.Lock()
	defer o.run.Unlock()

	res := Result{RunID: uuid.NewString(), Status: model.StatusSaving}
	o.setStatus(model.StatusSaving, res)

	lines := o.cart.Lines()
	updates, err := o.prepare(lines)
	if err == nil {
		err = o.applyLists(ctx, updates)
	}
	if err != nil {
		res.Status = model.StatusError
		res.Message = err.Error()
		if res.Message == "" {
			res.Message = "Errore durante il salvataggio."
		}
		logger.Error("cart save failed", "run", res.RunID, "items", len(lines), "error", err)
		o.finish(ctx, user, res, len(lines))
		return res
	}

	res.MirrorWarnings = o.mirror(ctx, updates)
	message := "Giacenza aggiornata con successo."
	if w := joinWarnings(res.MirrorWarnings); w != "" {
		message = "Giacenza aggiornata; Excel non aggiornato: " + w
	}
	if err := o.notify(ctx, user, lines); err != nil {
		res.NotifyWarning = err.Error()
		message += "; notifica Teams non inviata: " + err.Error()
	}
	res.Status = model.StatusSuccess
	res.Message = message
	o.cart.RemoveSaved(lines)

	logger.Info("cart saved", "run", res.RunID, "user", user.Username, "items", len(lines),
		"mirrorWarnings", len(res.MirrorWarnings), "notified", res.NotifyWarning == "")
	o.finish(ctx, user, res, len(lines))
	return res
}

func (o *Orchestrator) finish(ctx context.Context, user model.User, res Result, count int) {
	o.setStatus(res.Status, res)
	if o.deps.Journal == nil {
		return
	}
	rec := model.SaveRecord{
		RunID:         res.RunID,
		Username:      user.Username,
		Status:        string(res.Status),
		Message:       res.Message,
		ItemCount:     count,
		MirrorWarning: joinWarnings(res.MirrorWarnings),
		NotifyWarning: res.NotifyWarning,
		CreatedAt:     o.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	if err := o.deps.Journal.Append(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("save journal append failed", "run", res.RunID, "error", err)
	}
}

func (o *Orchestrator) prepare(lines []Line) ([]update, error) {
	if len(lines) == 0 {
		return nil, errors.New("Nessun articolo nel carrello da aggiornare.")
	}
	out := make([]update, 0, len(lines))
	for _, l := range lines {
		listID := o.deps.ListIDs[l.Item.Source]
		if listID == "" {
			return nil, fmt.Errorf("List ID non configurato per %s.", l.Item.Source)
		}
		out = append(out, update{line: l, listID: listID, payload: l.Edit.Payload()})
	}
	return out, nil
}

func (o *Orchestrator) applyLists(ctx context.Context, updates []update) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, u := range updates {
		g.Go(func() error {
			return o.deps.Lists.UpdateItem(gctx, u.listID, u.line.Item.ItemID, u.payload)
		})
	}
	err := g.Wait()
	if o.deps.Cache != nil {
		touched := map[model.Category]bool{}
		for _, u := range updates {
			touched[u.line.Item.Source] = true
		}
		for cat := range touched {
			o.deps.Cache.InvalidateCategory(cat)
		}
	}
	return err
}

// mirror runs one pass per mirrored category concurrently; rows within a
// category are written sequentially in that category's session.
func (o *Orchestrator) mirror(ctx context.Context, updates []update) map[model.Category]string {
	byCat := map[model.Category][]workbook.RowUpdate{}
	for _, u := range updates {
		cat := u.line.Item.Source
		if !cat.Mirrored() {
			continue
		}
		fields := u.line.Item.Fields.Clone()
		for k, v := range u.payload {
			fields[k] = v
		}
		var key workbook.RowKey
		if m := o.deps.Mirrors[cat]; m != nil {
			key = m.KeyFor(fields, u.line.Item.LottoProg)
		}
		byCat[cat] = append(byCat[cat], workbook.RowUpdate{Key: key, Fields: fields})
	}

	var (
		mu       sync.Mutex
		warnings = map[model.Category]string{}
		g        errgroup.Group
	)
	for cat, rows := range byCat {
		g.Go(func() error {
			var err error
			if m := o.deps.Mirrors[cat]; m == nil {
				err = workbook.ErrNotConfigured
			} else {
				err = m.UpdateRows(ctx, rows)
			}
			if err != nil {
				logger.Warn("mirror update failed", "category", cat, "rows", len(rows), "error", err)
				mu.Lock()
				warnings[cat] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

func joinWarnings(w map[model.Category]string) string {
	if len(w) == 0 {
		return ""
	}
	if len(w) == 1 {
		for _, msg := range w {
			return msg
		}
	}
	var parts []string
	for _, cat := range model.Categories {
		if msg, ok := w[cat]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", cat, msg))
		}
	}
	return strings.Join(parts, "; ")
}

func (o *Orchestrator) notify(ctx context.Context, user model.User, lines []Line) error {
	if o.deps.Notifier == nil {
		return nil
	}
	_, err := o.deps.Notifier.Invoke(ctx, BuildNotification(user, lines, o.now()))
	if err != nil {
		logger.Warn("flow notification failed", "error", err)
	}
	return err
}

// BuildNotification is the webhook payload of a save.
func BuildNotification(user model.User, lines []Line, now time.Time) map[string]any {
	username := user.Username
	if username == "" {
		username = user.DisplayName
	}
	if username == "" {
		username = "unknown"
	}
	var displayName any
	if user.DisplayName != "" {
		displayName = user.DisplayName
	}

	var sources []model.Category
	seen := map[model.Category]bool{}
	items := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		if !seen[l.Item.Source] {
			seen[l.Item.Source] = true
			sources = append(sources, l.Item.Source)
		}
		item := map[string]any{
			"key":                l.Item.Key,
			"itemId":             l.Item.ItemID,
			"title":              l.Item.Title,
			"source":             l.Item.Source,
			"commessa":           nil,
			"giacenza":           nil,
			"prenotazione":       nil,
			"note":               nil,
			"dataUltimoPrelievo": nil,
			"giacenzaTuboIntero": nil,
			"giacenzaContabMm":   nil,
			"dataPrelievo":       nil,
			"giacenzaQt":         nil,
			"giacenzaBarra":      nil,
		}
		for k, v := range l.Edit.notification() {
			item[k] = v
		}
		items = append(items, item)
	}

	return map[string]any{
		"action":       "AggiornaGiacenza",
		"user":         username,
		"displayName":  displayName,
		"totalItems":   len(lines),
		"sources":      sources,
		"hasForgiati":  seen[model.CategoryForgiati],
		"hasTubi":      seen[model.CategoryTubi],
		"hasOringHnbr": seen[model.CategoryOringHnbr],
		"hasOringNbr":  seen[model.CategoryOringNbr],
		"hasSparkGups": seen[model.CategorySparkGups],
		"items":        items,
		"timestamp":    now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
