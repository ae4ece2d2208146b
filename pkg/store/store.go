// Package store persists snapshots, lock edits and committed runs through
// gorm. Runs commit optimistically against the snapshot version they were
// computed from; lock edits touch one seat key at a time.
package store

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/roster-resolver-go/pkg/database"
	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

var (
	// ErrSnapshotNotFound means no snapshot has been published for the period.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrVersionConflict means another run committed against a newer
	// snapshot; the caller should re-resolve from the current one.
	ErrVersionConflict = errors.New("snapshot version conflict")
	// ErrLockNotFound means the seat key has no lock to delete.
	ErrLockNotFound = errors.New("lock not found")
)

// Store wraps the database handle with period-level operations.
type Store struct {
	DB *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// PublishSnapshot stores the period's snapshot as a whole document and
// returns the fresh version token. Locks and scoring are stripped first:
// locks live in their own keyed rows, weights in the settings table.
func (s *Store) PublishSnapshot(periodID string, snap models.Snapshot) (string, error) {
	snap.Locks = nil
	snap.Scoring = nil

	payload, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	version := uuid.NewString()
	err = s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"version": version,
			"payload": string(payload),
		}),
	}).Create(&database.SnapshotRecord{
		PeriodID: periodID,
		Version:  version,
		Payload:  string(payload),
	}).Error
	if err != nil {
		return "", err
	}
	return version, nil
}

// LoadSnapshot returns the period's snapshot with its lock rows folded back
// into the lock map, plus the current version token. The caller attaches
// scoring weights before resolving.
func (s *Store) LoadSnapshot(periodID string) (models.Snapshot, string, error) {
	var rec database.SnapshotRecord
	if err := s.DB.Where("period_id = ?", periodID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Snapshot{}, "", ErrSnapshotNotFound
		}
		return models.Snapshot{}, "", err
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(rec.Payload), &snap); err != nil {
		return models.Snapshot{}, "", err
	}

	locks, err := s.LocksForPeriod(periodID)
	if err != nil {
		return models.Snapshot{}, "", err
	}
	snap.Locks = locks
	return snap, rec.Version, nil
}

// LocksForPeriod returns the period's lock map keyed by seat key.
func (s *Store) LocksForPeriod(periodID string) (map[string]models.Lock, error) {
	var rows []database.LockRecord
	if err := s.DB.Where("period_id = ?", periodID).Find(&rows).Error; err != nil {
		return nil, err
	}

	locks := make(map[string]models.Lock, len(rows))
	for _, r := range rows {
		var allow []string
		if r.Allow != "" {
			allow = strings.Split(r.Allow, ",")
		}
		locks[models.SeatKey(r.ShiftID, r.SeatID)] = models.Lock{
			MemberID: r.MemberID,
			Mode:     r.Mode,
			Allow:    allow,
			Note:     r.Note,
		}
	}
	return locks, nil
}

// PutLock upserts a single lock row. Concurrent supervisor edits on other
// seats are untouched; there is no whole-map overwrite to lose them under.
func (s *Store) PutLock(periodID, shiftID, seatID string, lock models.Lock) error {
	lock = lock.Normalized()
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period_id"}, {Name: "shift_id"}, {Name: "seat_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"member_id": lock.MemberID,
			"mode":      lock.Mode,
			"allow":     strings.Join(lock.Allow, ","),
			"note":      lock.Note,
		}),
	}).Create(&database.LockRecord{
		PeriodID: periodID,
		ShiftID:  shiftID,
		SeatID:   seatID,
		MemberID: lock.MemberID,
		Mode:     lock.Mode,
		Allow:    strings.Join(lock.Allow, ","),
		Note:     lock.Note,
	}).Error
}

// DeleteLock removes a single lock row.
func (s *Store) DeleteLock(periodID, shiftID, seatID string) error {
	res := s.DB.Where("period_id = ? AND shift_id = ? AND seat_id = ?",
		periodID, shiftID, seatID).Delete(&database.LockRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLockNotFound
	}
	return nil
}

// CommitRun stores the run report for a period if and only if the snapshot
// version it was computed from is still the published one. A stale run gets
// ErrVersionConflict instead of silently overwriting a newer result.
func (s *Store) CommitRun(periodID, snapshotVersion string, report models.RunReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rec database.SnapshotRecord
		if err := tx.Where("period_id = ?", periodID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSnapshotNotFound
			}
			return err
		}
		if rec.Version != snapshotVersion {
			return ErrVersionConflict
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "period_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"snapshot_version": snapshotVersion,
				"payload":          string(payload),
			}),
		}).Create(&database.RunRecord{
			PeriodID:        periodID,
			SnapshotVersion: snapshotVersion,
			Payload:         string(payload),
		}).Error
	})
}

// LatestRun returns the committed run report for a period, if any.
func (s *Store) LatestRun(periodID string) (models.RunReport, string, error) {
	var rec database.RunRecord
	if err := s.DB.Where("period_id = ?", periodID).First(&rec).Error; err != nil {
		return models.RunReport{}, "", err
	}
	var report models.RunReport
	if err := json.Unmarshal([]byte(rec.Payload), &report); err != nil {
		return models.RunReport{}, "", err
	}
	return report, rec.SnapshotVersion, nil
}

// LoadScoring reads the scoring weights row; it satisfies
// config.ScoringSource. No row means no weights: the resolver treats that
// as its fatal precondition, so no default is invented here.
func (s *Store) LoadScoring() (*models.ScoringConfig, error) {
	var row database.ScoringSettings
	if err := s.DB.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.ScoringConfig{
		QualifiedWeight: row.QualifiedWeight,
		FullWeight:      row.FullWeight,
		PartialWeight:   row.PartialWeight,
		FairnessWeight:  row.FairnessWeight,
		NearCapWeight:   row.NearCapWeight,
	}, nil
}

// SaveScoring writes the weights row, creating it on first use.
func (s *Store) SaveScoring(cfg models.ScoringConfig) error {
	var row database.ScoringSettings
	err := s.DB.First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	row.QualifiedWeight = cfg.QualifiedWeight
	row.FullWeight = cfg.FullWeight
	row.PartialWeight = cfg.PartialWeight
	row.FairnessWeight = cfg.FairnessWeight
	row.NearCapWeight = cfg.NearCapWeight
	return s.DB.Save(&row).Error
}

// EnsureScoringDefaults seeds the weights row when the table is empty, the
// same way the admin user is seeded at startup.
func (s *Store) EnsureScoringDefaults(defaults models.ScoringConfig) error {
	var count int64
	if err := s.DB.Model(&database.ScoringSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.SaveScoring(defaults)
}
