package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/shared/id"
	"github.com/GriffinCanCode/sitecraft/internal/shared/utils"
)

// Recorder receives store metrics
type Recorder interface {
	RecordBlueprintCreated()
	RecordStoreError(op string)
}

// Config configures a Manager
type Config struct {
	ParseOptions blueprint.ParseOptions
	Recorder     Recorder
}

// Manager is the blueprint store: it validates at the editing boundary and
// delegates persistence to a Repository.
type Manager struct {
	repo    Repository
	logger  *zap.Logger
	cfg     Config
	nowFunc func() time.Time
}

// NewManager creates a store manager over repo
func NewManager(repo Repository, logger *zap.Logger, cfg Config) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:    repo,
		logger:  logger.Named("site"),
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

// Create validates root, assigns an id and creation time, and persists it.
// A *blueprint.ValidationError means nothing was stored.
func (m *Manager) Create(ctx context.Context, ownerID, title string, root blueprint.Node) (*Blueprint, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}

	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	el, ok := root.(*blueprint.Element)
	if !ok || el == nil {
		return nil, &blueprint.ValidationError{Path: "$", Reason: "root must be an element"}
	}
	if err := blueprint.ValidateWithOptions(el, m.cfg.ParseOptions); err != nil {
		return nil, err
	}

	now := m.nowFunc().UTC()
	bp := &Blueprint{
		ID:        id.NewBlueprintID(now).String(),
		OwnerID:   ownerID,
		Title:     title,
		Root:      el.Clone(),
		CreatedAt: now,
	}

	if err := m.repo.Insert(ctx, bp); err != nil {
		m.recordError("create")
		m.logger.Error("Failed to store blueprint",
			zap.String("owner", ownerID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store blueprint: %w", err)
	}

	if m.cfg.Recorder != nil {
		m.cfg.Recorder.RecordBlueprintCreated()
	}
	m.logger.Info("Blueprint created",
		zap.String("id", bp.ID),
		zap.String("owner", ownerID),
		zap.Stringer("stats", blueprint.Measure(el)))

	return bp, nil
}

// CreateFromJSON parses blueprint text at the editing boundary and stores it.
// Invalid JSON and shape errors are returned before the repository is touched.
func (m *Manager) CreateFromJSON(ctx context.Context, ownerID, title string, text []byte) (*Blueprint, error) {
	root, err := blueprint.ParseWithOptions(text, m.cfg.ParseOptions)
	if err != nil {
		return nil, err
	}
	return m.Create(ctx, ownerID, title, root)
}

// List returns the owner's blueprints, most recent first. An owner with no
// blueprints gets an empty slice.
func (m *Manager) List(ctx context.Context, ownerID string) ([]*Blueprint, error) {
	bps, err := m.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		m.recordError("list")
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}
	if bps == nil {
		bps = []*Blueprint{}
	}
	return bps, nil
}

// Get returns a blueprint owned by ownerID. Unknown ids and ids owned by
// someone else both yield *NotFoundError.
func (m *Manager) Get(ctx context.Context, ownerID, blueprintID string) (*Blueprint, error) {
	if !id.IsValidPrefixed(blueprintID, id.BlueprintPrefix) {
		return nil, &NotFoundError{ID: blueprintID}
	}

	bp, err := m.repo.Get(ctx, blueprintID)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{ID: blueprintID}
	}
	if err != nil {
		m.recordError("get")
		return nil, fmt.Errorf("failed to load blueprint: %w", err)
	}
	if bp.OwnerID != ownerID {
		return nil, &NotFoundError{ID: blueprintID}
	}
	return bp, nil
}

// Close releases the repository
func (m *Manager) Close() error {
	return m.repo.Close()
}

func (m *Manager) recordError(op string) {
	if m.cfg.Recorder != nil {
		m.cfg.Recorder.RecordStoreError(op)
	}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle, nil
	}
	if err := utils.ValidateTitle(title); err != nil {
		return "", &blueprint.ValidationError{Reason: err.Error()}
	}
	return title, nil
}
