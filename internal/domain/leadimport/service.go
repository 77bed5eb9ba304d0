package leadimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"leadcrm/internal/domain/lead"
	"leadcrm/internal/pkg/archive"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const previewRows = 5

// LeadWriter inserts all leads or none.
type LeadWriter interface {
	BulkCreate(ctx context.Context, leads []*lead.Lead, batchSize int) error
}

// AgentResolver maps usernames to user ids in one lookup.
type AgentResolver interface {
	FindByUsernames(ctx context.Context, usernames []string) (map[string]int64, error)
}

type HistoryRepository interface {
	Create(ctx context.Context, rec *ImportRecord) error
	List(ctx context.Context, limit int) ([]ImportRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Options struct {
	MaxUploadBytes int64
	// MaxTokenBytes caps the token handed back by Upload. It defaults to four
	// times MaxUploadBytes, enough for an inline token of a full-size file.
	MaxTokenBytes int64
	ValidateRows  bool
	BatchSize     int
}

// Service runs the two-step import wizard.
type Service struct {
	store    TableStore
	leads    LeadWriter
	agents   AgentResolver
	history  HistoryRepository
	archiver archive.Archiver
	opts     Options
}

func NewService(store TableStore, leads LeadWriter, agents AgentResolver, history HistoryRepository, archiver archive.Archiver, opts Options) *Service {
	if archiver == nil {
		archiver = archive.Nop{}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.MaxTokenBytes <= 0 && opts.MaxUploadBytes > 0 {
		opts.MaxTokenBytes = 4 * opts.MaxUploadBytes
	}
	return &Service{
		store:    store,
		leads:    leads,
		agents:   agents,
		history:  history,
		archiver: archiver,
		opts:     opts,
	}
}

// MaxTokenBytes is the largest token Upload hands out, or 0 for no limit.
func (s *Service) MaxTokenBytes() int64 { return s.opts.MaxTokenBytes }

// UploadResult is what the mapping step needs to render its form.
type UploadResult struct {
	Columns          []string   `json:"columns"`
	RequiredFields   []string   `json:"required_fields"`
	OptionalFields   []string   `json:"optional_fields"`
	AllFields        []string   `json:"all_fields"`
	Token            string     `json:"token"`
	FileName         string     `json:"file_name"`
	RowCount         int        `json:"row_count"`
	Preview          [][]string `json:"preview"`
	SuggestedMapping Mapping    `json:"suggested_mapping"`
}

// Upload parses the file and returns its columns plus a token for the mapping step.
// Nothing is written to the lead store.
func (s *Service) Upload(ctx context.Context, userID int64, fileName string, r io.Reader) (*UploadResult, error) {
	if _, err := DetectFormat(fileName); err != nil {
		return nil, err
	}

	data, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}

	table, err := Parse(fileName, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	key, err := s.archiver.Archive(ctx, table.Source, data)
	if err != nil {
		logrus.WithError(err).WithField("file", table.Source).Warn("upload archive failed")
	}
	table.ArchiveKey = key

	token, err := s.store.Save(ctx, table)
	if err != nil {
		return nil, err
	}
	if s.opts.MaxTokenBytes > 0 && int64(len(token)) > s.opts.MaxTokenBytes {
		_ = s.store.Discard(ctx, token)
		return nil, fmt.Errorf("%w: %d byte token", ErrSessionTooLarge, len(token))
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"file":    table.Source,
		"columns": len(table.Columns),
		"rows":    len(table.Rows),
	}).Info("import file uploaded")

	return &UploadResult{
		Columns:          table.Columns,
		RequiredFields:   RequiredFields(),
		OptionalFields:   OptionalFields(),
		AllFields:        AllFields(),
		Token:            token,
		FileName:         table.Source,
		RowCount:         len(table.Rows),
		Preview:          table.Preview(previewRows),
		SuggestedMapping: SuggestMapping(table.Columns),
	}, nil
}

func (s *Service) readLimited(r io.Reader) ([]byte, error) {
	limit := s.opts.MaxUploadBytes
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

// Plan is the validated outcome of a mapping, ready to insert.
type Plan struct {
	Table *Table
	Leads []*lead.Lead
}

// Prepare decodes the token and builds one candidate lead per row. It fails with
// *MappingError or *RowValidationError and never writes.
func (s *Service) Prepare(ctx context.Context, token string, mapping Mapping) (*Plan, error) {
	table, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	if missing := missingRequired(table, mapping); len(missing) > 0 {
		return nil, &MappingError{Missing: missing}
	}

	leads, err := s.buildLeads(ctx, table, mapping)
	if err != nil {
		return nil, err
	}

	if s.opts.ValidateRows {
		if err := validateLeads(leads); err != nil {
			return nil, err
		}
	}

	return &Plan{Table: table, Leads: leads}, nil
}

// CommitResult is returned after a successful import.
type CommitResult struct {
	ImportID string `json:"import_id"`
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// Commit inserts every candidate row in one transaction.
func (s *Service) Commit(ctx context.Context, userID int64, token string, mapping Mapping) (*CommitResult, error) {
	plan, err := s.Prepare(ctx, token, mapping)
	if err != nil {
		return nil, err
	}

	if err := s.leads.BulkCreate(ctx, plan.Leads, s.opts.BatchSize); err != nil {
		if errors.Is(err, lead.ErrEmailExists) {
			return nil, fmt.Errorf("%w: %v", ErrImportConflict, err)
		}
		return nil, err
	}

	rec := &ImportRecord{
		ID:           uuid.NewString(),
		FileName:     plan.Table.Source,
		ArchiveKey:   plan.Table.ArchiveKey,
		RowsRead:     len(plan.Table.Rows),
		RowsInserted: len(plan.Leads),
	}
	if userID != 0 {
		rec.UserID = &userID
	}
	if err := s.history.Create(ctx, rec); err != nil {
		logrus.WithError(err).WithField("import_id", rec.ID).Error("import record not saved")
	}
	if err := s.store.Discard(ctx, token); err != nil {
		logrus.WithError(err).Warn("import token not discarded")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"import_id": rec.ID,
		"file":      rec.FileName,
		"inserted":  rec.RowsInserted,
	}).Info("leads imported")

	return &CommitResult{
		ImportID: rec.ID,
		Imported: len(plan.Leads),
		Message:  fmt.Sprintf("%d leads imported successfully.", len(plan.Leads)),
	}, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.history.List(ctx, limit)
}

// Prune drops audit records older than maxAge.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, fmt.Errorf("max age must be positive, got %s", maxAge)
	}
	n, err := s.history.DeleteBefore(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	logrus.WithField("deleted", n).Info("import history pruned")
	return n, nil
}

// Discard abandons an upload without importing it.
func (s *Service) Discard(ctx context.Context, token string) error {
	return s.store.Discard(ctx, token)
}

// missingRequired lists required fields that are unmapped or name an absent column.
func missingRequired(t *Table, m Mapping) []string {
	var missing []string
	for _, f := range RequiredFields() {
		if !t.HasColumn(strings.TrimSpace(m[f])) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (s *Service) buildLeads(ctx context.Context, t *Table, m Mapping) ([]*lead.Lead, error) {
	idx := make(map[string]int, len(allFields))
	for _, f := range allFields {
		idx[f] = t.ColumnIndex(strings.TrimSpace(m[f]))
	}
	cell := func(row []string, field string) string {
		i := idx[field]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	agentIDs := map[string]int64{}
	if idx[FieldAgent] >= 0 {
		seen := map[string]bool{}
		var names []string
		for _, row := range t.Rows {
			if name := cell(row, FieldAgent); name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		var err error
		agentIDs, err = s.agents.FindByUsernames(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("resolve agents: %w", err)
		}
	}

	leads := make([]*lead.Lead, 0, len(t.Rows))
	for _, row := range t.Rows {
		l := &lead.Lead{
			FullName:    cell(row, FieldFullName),
			Email:       cell(row, FieldEmail),
			Phone:       cell(row, FieldPhone),
			Country:     cell(row, FieldCountry),
			Timezone:    cell(row, FieldTimezone),
			IncomeRange: cell(row, FieldIncomeRange),
			Comment:     cell(row, FieldComment),
		}
		if id, ok := agentIDs[cell(row, FieldAgent)]; ok {
			agentID := id
			l.AgentID = &agentID
		}
		leads = append(leads, l)
	}
	return leads, nil
}

func validateLeads(leads []*lead.Lead) error {
	var rows []RowError
	for i, l := range leads {
		if fields := l.Validate(); fields != nil {
			rows = append(rows, RowError{Row: i + 1, Fields: fields})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return &RowValidationError{Rows: rows, TotalRows: len(leads)}
}
