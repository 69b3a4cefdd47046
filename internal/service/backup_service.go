package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gatherings/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version        string              `json:"version"`
	ExportedAt     time.Time           `json:"exported_at"`
	Adults         []AdultBackup       `json:"adults"`
	Youths         []YouthBackup       `json:"youths"`
	CaregiverLinks []CaregiverBackup   `json:"caregiver_links"`
	Events         []EventBackup       `json:"events"`
	RSVPs          []RSVPBackup        `json:"rsvps"`
	RSVPMembers    []RSVPMemberBackup  `json:"rsvp_members"`
	PublicRSVPs    []PublicRSVPBackup  `json:"public_rsvps"`
}

type AdultBackup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type YouthBackup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CaregiverBackup struct {
	AdultID int64 `json:"adult_id"`
	YouthID int64 `json:"youth_id"`
}

type EventBackup struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	StartsAt *time.Time `json:"starts_at"`
	Capacity *int64     `json:"capacity"`
}

type RSVPBackup struct {
	ID               int64   `json:"id"`
	EventID          int64   `json:"event_id"`
	CreatorAdultID   int64   `json:"creator_adult_id"`
	EnteredByAdultID int64   `json:"entered_by_adult_id"`
	Answer           string  `json:"answer"`
	Comment          *string `json:"comment"`
	GuestCount       int     `json:"guest_count"`
}

type RSVPMemberBackup struct {
	RSVPID  int64  `json:"rsvp_id"`
	EventID int64  `json:"event_id"`
	Kind    string `json:"kind"`
	AdultID *int64 `json:"adult_id"`
	YouthID *int64 `json:"youth_id"`
}

type PublicRSVPBackup struct {
	ID         int64   `json:"id"`
	EventID    int64   `json:"event_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	AdultCount int     `json:"adult_count"`
	KidCount   int     `json:"kid_count"`
	Answer     string  `json:"answer"`
	Comment    *string `json:"comment"`
	TokenHash  string  `json:"token_hash"`
}

// BackupService exports and imports the full dataset as JSON
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a full backup to the given file path
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Backup exported to %s", outputPath)
	return nil
}

// ExportToWriter streams a full backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1",
		ExportedAt: time.Now().UTC(),
	}

	steps := []func(*BackupData) error{
		s.exportAdults,
		s.exportYouths,
		s.exportCaregiverLinks,
		s.exportEvents,
		s.exportRSVPs,
		s.exportRSVPMembers,
		s.exportPublicRSVPs,
	}
	for _, step := range steps {
		if err := step(backup); err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

func (s *BackupService) exportAdults(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name FROM adults ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export adults: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AdultBackup
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return fmt.Errorf("failed to scan adult: %w", err)
		}
		backup.Adults = append(backup.Adults, a)
	}
	return rows.Err()
}

func (s *BackupService) exportYouths(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name FROM youths ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export youths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var y YouthBackup
		if err := rows.Scan(&y.ID, &y.Name); err != nil {
			return fmt.Errorf("failed to scan youth: %w", err)
		}
		backup.Youths = append(backup.Youths, y)
	}
	return rows.Err()
}

func (s *BackupService) exportCaregiverLinks(backup *BackupData) error {
	rows, err := s.db.Query("SELECT adult_id, youth_id FROM caregiver_links ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export caregiver links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CaregiverBackup
		if err := rows.Scan(&c.AdultID, &c.YouthID); err != nil {
			return fmt.Errorf("failed to scan caregiver link: %w", err)
		}
		backup.CaregiverLinks = append(backup.CaregiverLinks, c)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, title, starts_at, capacity FROM events ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e EventBackup
		if err := rows.Scan(&e.ID, &e.Title, &e.StartsAt, &e.Capacity); err != nil {
			return fmt.Errorf("failed to scan event: %w", err)
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func (s *BackupService) exportRSVPs(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, event_id, creator_adult_id, entered_by_adult_id, answer, comment, guest_count FROM rsvps ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export rsvps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r RSVPBackup
		if err := rows.Scan(&r.ID, &r.EventID, &r.CreatorAdultID, &r.EnteredByAdultID, &r.Answer, &r.Comment, &r.GuestCount); err != nil {
			return fmt.Errorf("failed to scan rsvp: %w", err)
		}
		backup.RSVPs = append(backup.RSVPs, r)
	}
	return rows.Err()
}

func (s *BackupService) exportRSVPMembers(backup *BackupData) error {
	rows, err := s.db.Query("SELECT rsvp_id, event_id, kind, adult_id, youth_id FROM rsvp_members ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export rsvp members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m RSVPMemberBackup
		if err := rows.Scan(&m.RSVPID, &m.EventID, &m.Kind, &m.AdultID, &m.YouthID); err != nil {
			return fmt.Errorf("failed to scan rsvp member: %w", err)
		}
		backup.RSVPMembers = append(backup.RSVPMembers, m)
	}
	return rows.Err()
}

func (s *BackupService) exportPublicRSVPs(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, event_id, first_name, last_name, email, COALESCE(phone, ''), adult_count, kid_count, answer, comment, token_hash FROM public_rsvps ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export public rsvps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PublicRSVPBackup
		if err := rows.Scan(&p.ID, &p.EventID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.AdultCount, &p.KidCount, &p.Answer, &p.Comment, &p.TokenHash); err != nil {
			return fmt.Errorf("failed to scan public rsvp: %w", err)
		}
		backup.PublicRSVPs = append(backup.PublicRSVPs, p)
	}
	return rows.Err()
}

// Import loads a backup file into an empty database
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader loads a backup into the database inside one transaction
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range backup.Adults {
		if _, err := tx.Exec("INSERT INTO adults (id, name) VALUES (?, ?)", a.ID, a.Name); err != nil {
			return fmt.Errorf("failed to import adult %d: %w", a.ID, err)
		}
	}
	for _, y := range backup.Youths {
		if _, err := tx.Exec("INSERT INTO youths (id, name) VALUES (?, ?)", y.ID, y.Name); err != nil {
			return fmt.Errorf("failed to import youth %d: %w", y.ID, err)
		}
	}
	for _, c := range backup.CaregiverLinks {
		if _, err := tx.Exec("INSERT INTO caregiver_links (adult_id, youth_id) VALUES (?, ?)", c.AdultID, c.YouthID); err != nil {
			return fmt.Errorf("failed to import caregiver link %d/%d: %w", c.AdultID, c.YouthID, err)
		}
	}
	for _, e := range backup.Events {
		if _, err := tx.Exec("INSERT INTO events (id, title, starts_at, capacity) VALUES (?, ?, ?, ?)", e.ID, e.Title, e.StartsAt, e.Capacity); err != nil {
			return fmt.Errorf("failed to import event %d: %w", e.ID, err)
		}
	}
	for _, r := range backup.RSVPs {
		if _, err := tx.Exec(
			"INSERT INTO rsvps (id, event_id, creator_adult_id, entered_by_adult_id, answer, comment, guest_count) VALUES (?, ?, ?, ?, ?, ?, ?)",
			r.ID, r.EventID, r.CreatorAdultID, r.EnteredByAdultID, r.Answer, r.Comment, r.GuestCount); err != nil {
			return fmt.Errorf("failed to import rsvp %d: %w", r.ID, err)
		}
	}
	for _, m := range backup.RSVPMembers {
		if _, err := tx.Exec(
			"INSERT INTO rsvp_members (rsvp_id, event_id, kind, adult_id, youth_id) VALUES (?, ?, ?, ?, ?)",
			m.RSVPID, m.EventID, m.Kind, m.AdultID, m.YouthID); err != nil {
			return fmt.Errorf("failed to import rsvp member for rsvp %d: %w", m.RSVPID, err)
		}
	}
	for _, p := range backup.PublicRSVPs {
		if _, err := tx.Exec(
			"INSERT INTO public_rsvps (id, event_id, first_name, last_name, email, phone, adult_count, kid_count, answer, comment, token_hash) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.EventID, p.FirstName, p.LastName, p.Email, p.Phone, p.AdultCount, p.KidCount, p.Answer, p.Comment, p.TokenHash); err != nil {
			return fmt.Errorf("failed to import public rsvp %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Backup imported: %d adults, %d youths, %d events, %d rsvps",
		len(backup.Adults), len(backup.Youths), len(backup.Events), len(backup.RSVPs))
	return nil
}
