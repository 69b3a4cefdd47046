package service

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gatherings/internal/database"
	"gatherings/internal/models"
	"gatherings/internal/repository"
)

func TestSanitizeIDs(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int64
		expected []int64
	}{
		{
			name:     "nil input",
			ids:      nil,
			expected: []int64{},
		},
		{
			name:     "drops zero and negative",
			ids:      []int64{0, 3, -1, 7},
			expected: []int64{3, 7},
		},
		{
			name:     "drops duplicates keeping first",
			ids:      []int64{5, 2, 5, 2, 9},
			expected: []int64{5, 2, 9},
		},
		{
			name:     "already clean",
			ids:      []int64{1, 2, 3},
			expected: []int64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeIDs(tt.ids)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("sanitizeIDs() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name     string
		comment  string
		expected *string
	}{
		{
			name:     "empty string",
			comment:  "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			comment:  "   \t\n",
			expected: nil,
		},
		{
			name:     "trims surrounding whitespace",
			comment:  "  bringing a salad  ",
			expected: strPtr("bringing a salad"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeComment(tt.comment)
			if (result == nil) != (tt.expected == nil) {
				t.Fatalf("normalizeComment() = %v, want %v", result, tt.expected)
			}
			if result != nil && *result != *tt.expected {
				t.Errorf("normalizeComment() = %q, want %q", *result, *tt.expected)
			}
		})
	}
}

func TestSortNamesNatural(t *testing.T) {
	names := []string{"kid 10", "Kid 2", "adam", "Beth"}
	sortNamesNatural(names)

	expected := []string{"adam", "Beth", "Kid 2", "kid 10"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("sortNamesNatural() = %v, want %v", names, expected)
	}
}

// testHarness bundles a temp SQLite database with the repositories the
// integration tests seed through.
type testHarness struct {
	db        *database.DB
	people    *repository.PersonRepository
	household *repository.HouseholdRepository
	events    *repository.EventRepository
	rsvps     *repository.RSVPRepository
	service   *RSVPService
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_rsvp.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &testHarness{
		db:        db,
		people:    repository.NewPersonRepository(db),
		household: repository.NewHouseholdRepository(db),
		events:    repository.NewEventRepository(db),
		rsvps:     repository.NewRSVPRepository(db),
		service:   NewRSVPService(db, NewAuditService(db)),
	}
}

func (h *testHarness) adult(t *testing.T, name string) int64 {
	t.Helper()
	a, err := h.people.CreateAdult(name)
	if err != nil {
		t.Fatalf("Failed to create adult %s: %v", name, err)
	}
	return a.ID
}

func (h *testHarness) youth(t *testing.T, name string) int64 {
	t.Helper()
	y, err := h.people.CreateYouth(name)
	if err != nil {
		t.Fatalf("Failed to create youth %s: %v", name, err)
	}
	return y.ID
}

func (h *testHarness) link(t *testing.T, adultID, youthID int64) {
	t.Helper()
	if err := h.household.AddLink(adultID, youthID); err != nil {
		t.Fatalf("Failed to link adult %d to youth %d: %v", adultID, youthID, err)
	}
}

func (h *testHarness) event(t *testing.T, title string, capacity *int64) int64 {
	t.Helper()
	e, err := h.events.Create(title, time.Now().Add(72*time.Hour), capacity)
	if err != nil {
		t.Fatalf("Failed to create event %s: %v", title, err)
	}
	return e.ID
}

func (h *testHarness) youthMembers(t *testing.T, rsvpID int64) []int64 {
	t.Helper()
	rows, err := h.db.Query("SELECT youth_id FROM rsvp_members WHERE rsvp_id = ? AND kind = 'youth' ORDER BY youth_id", rsvpID)
	if err != nil {
		t.Fatalf("Failed to query members: %v", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Failed to scan member: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestSetFamilyRSVPSharedChild(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	alice := h.adult(t, "Alice")
	ben := h.adult(t, "Ben")
	yuna := h.youth(t, "Yuna")
	zoe := h.youth(t, "Zoe")

	h.link(t, alice, yuna)
	h.link(t, alice, zoe)
	h.link(t, ben, zoe)

	cap := int64(3)
	eventID := h.event(t, "Picnic", &cap)

	// Alice registers both kids
	rsvpID, err := h.service.SetFamilyRSVP(alice, eventID, models.AnswerYes, nil, []int64{yuna, zoe}, "bringing juice", 0)
	if err != nil {
		t.Fatalf("Alice's submission failed: %v", err)
	}

	// Ben shares Zoe, so he must resolve to the same record
	resolved, err := h.service.ResolveByAdult(eventID, ben)
	if err != nil {
		t.Fatalf("ResolveByAdult failed: %v", err)
	}
	if resolved == nil || resolved.ID != rsvpID {
		t.Fatalf("Ben resolved to %v, want RSVP %d", resolved, rsvpID)
	}

	// Ben's submission replaces the record rather than creating a second one
	updatedID, err := h.service.SetFamilyRSVP(ben, eventID, models.AnswerMaybe, nil, []int64{zoe}, "only Zoe can make it", 0)
	if err != nil {
		t.Fatalf("Ben's submission failed: %v", err)
	}
	if updatedID != rsvpID {
		t.Errorf("Ben's submission created RSVP %d, want update of %d", updatedID, rsvpID)
	}

	rsvp, err := h.rsvps.GetByID(rsvpID)
	if err != nil {
		t.Fatalf("Failed to reload RSVP: %v", err)
	}
	if rsvp.Answer != models.AnswerMaybe {
		t.Errorf("Answer = %s, want maybe", rsvp.Answer)
	}
	if rsvp.CreatorAdultID != alice {
		t.Errorf("CreatorAdultID = %d, want %d (creator is immutable)", rsvp.CreatorAdultID, alice)
	}
	if rsvp.EnteredByAdultID != ben {
		t.Errorf("EnteredByAdultID = %d, want %d", rsvp.EnteredByAdultID, ben)
	}
	if got := rsvp.CommentText(); got != "only Zoe can make it" {
		t.Errorf("Comment = %q, want replacement text", got)
	}

	members := h.youthMembers(t, rsvpID)
	if !reflect.DeepEqual(members, []int64{zoe}) {
		t.Errorf("Youth members = %v, want [%d]", members, zoe)
	}

	// The event must still hold exactly one RSVP
	all, err := h.rsvps.ListByEvent(eventID)
	if err != nil {
		t.Fatalf("ListByEvent failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Event has %d RSVPs, want 1", len(all))
	}
}

func TestSetFamilyRSVPCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	carol := h.adult(t, "Carol")
	dave := h.adult(t, "Dave")
	k1 := h.youth(t, "Kim")
	k2 := h.youth(t, "Lee")
	k3 := h.youth(t, "Mia")

	h.link(t, carol, k1)
	h.link(t, carol, k2)
	h.link(t, dave, k3)

	cap := int64(2)
	eventID := h.event(t, "Workshop", &cap)

	// Carol fills the event
	rsvpID, err := h.service.SetFamilyRSVP(carol, eventID, models.AnswerYes, nil, []int64{k1, k2}, "", 0)
	if err != nil {
		t.Fatalf("Carol's submission failed: %v", err)
	}

	// Dave's single youth would exceed capacity
	_, err = h.service.SetFamilyRSVP(dave, eventID, models.AnswerYes, nil, []int64{k3}, "", 0)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Dave's submission error = %v, want ErrCapacityExceeded", err)
	}

	// Carol resubmitting the same seats is not a capacity breach:
	// her own youths are excluded from the projection
	resubmitID, err := h.service.SetFamilyRSVP(carol, eventID, models.AnswerYes, nil, []int64{k1, k2}, "see you there", 1)
	if err != nil {
		t.Fatalf("Carol's resubmission failed: %v", err)
	}
	if resubmitID != rsvpID {
		t.Errorf("Resubmission created RSVP %d, want update of %d", resubmitID, rsvpID)
	}

	// Shrinking her member list frees a seat for Dave
	if _, err := h.service.SetFamilyRSVP(carol, eventID, models.AnswerYes, nil, []int64{k1}, "", 0); err != nil {
		t.Fatalf("Carol's shrink failed: %v", err)
	}
	if _, err := h.service.SetFamilyRSVP(dave, eventID, models.AnswerYes, nil, []int64{k3}, "", 0); err != nil {
		t.Errorf("Dave's submission after freed seat failed: %v", err)
	}
}

func TestSetFamilyRSVPUnlimitedCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	erin := h.adult(t, "Erin")
	kids := []int64{h.youth(t, "A"), h.youth(t, "B"), h.youth(t, "C")}
	for _, k := range kids {
		h.link(t, erin, k)
	}

	eventID := h.event(t, "Open House", nil)

	if _, err := h.service.SetFamilyRSVP(erin, eventID, models.AnswerYes, []int64{erin}, kids, "", 4); err != nil {
		t.Fatalf("Submission against unlimited event failed: %v", err)
	}
}

func TestSetFamilyRSVPValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)
	frank := h.adult(t, "Frank")
	eventID := h.event(t, "Dinner", nil)

	tests := []struct {
		name    string
		eventID int64
		answer  models.Answer
		wantErr error
	}{
		{
			name:    "invalid answer",
			eventID: eventID,
			answer:  models.Answer("definitely"),
			wantErr: ErrInvalidAnswer,
		},
		{
			name:    "zero event id",
			eventID: 0,
			answer:  models.AnswerYes,
			wantErr: ErrInvalidEventID,
		},
		{
			name:    "missing event",
			eventID: 99999,
			answer:  models.AnswerYes,
			wantErr: ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.service.SetFamilyRSVP(frank, tt.eventID, tt.answer, nil, nil, "", 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetFamilyRSVP() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveByYouth(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	gina := h.adult(t, "Gina")
	hal := h.adult(t, "Hal")
	nia := h.youth(t, "Nia")
	h.link(t, gina, nia)
	h.link(t, hal, nia)

	eventID := h.event(t, "Recital", nil)

	// No record yet
	rsvp, err := h.service.ResolveByYouth(eventID, nia)
	if err != nil {
		t.Fatalf("ResolveByYouth failed: %v", err)
	}
	if rsvp != nil {
		t.Fatalf("Expected no RSVP before submission, got %d", rsvp.ID)
	}

	rsvpID, err := h.service.SetFamilyRSVP(gina, eventID, models.AnswerYes, nil, []int64{nia}, "", 0)
	if err != nil {
		t.Fatalf("Submission failed: %v", err)
	}

	// Any caregiver of the youth resolves to the same record
	rsvp, err = h.service.ResolveByYouth(eventID, nia)
	if err != nil {
		t.Fatalf("ResolveByYouth failed: %v", err)
	}
	if rsvp == nil || rsvp.ID != rsvpID {
		t.Errorf("ResolveByYouth = %v, want RSVP %d", rsvp, rsvpID)
	}
}

func TestCommentsByCaregiver(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	ivy := h.adult(t, "Ivy")
	jon := h.adult(t, "Jon")
	kay := h.adult(t, "Kay")
	oli := h.youth(t, "Oli")
	pia := h.youth(t, "Pia")

	// Ivy and Jon share Oli; Kay has Pia on her own
	h.link(t, ivy, oli)
	h.link(t, jon, oli)
	h.link(t, kay, pia)

	eventID := h.event(t, "Fair", nil)

	if _, err := h.service.SetFamilyRSVP(ivy, eventID, models.AnswerYes, nil, []int64{oli}, "we bring plates", 0); err != nil {
		t.Fatalf("Ivy's submission failed: %v", err)
	}
	if _, err := h.service.SetFamilyRSVP(kay, eventID, models.AnswerYes, nil, []int64{pia}, "arriving late", 0); err != nil {
		t.Fatalf("Kay's submission failed: %v", err)
	}

	comments, err := h.service.CommentsByCaregiver(eventID)
	if err != nil {
		t.Fatalf("CommentsByCaregiver failed: %v", err)
	}

	// Both caregivers of Oli see the family comment, even though only
	// Ivy submitted it
	for _, id := range []int64{ivy, jon} {
		if comments[id] != "we bring plates" {
			t.Errorf("Comment for adult %d = %q, want family comment", id, comments[id])
		}
	}
	if comments[kay] != "arriving late" {
		t.Errorf("Comment for Kay = %q, want her own comment", comments[kay])
	}

	// Re-running the expansion is idempotent: no duplicated text
	again, err := h.service.CommentsByCaregiver(eventID)
	if err != nil {
		t.Fatalf("Second CommentsByCaregiver failed: %v", err)
	}
	if !reflect.DeepEqual(comments, again) {
		t.Errorf("Comment expansion not stable: %v vs %v", comments, again)
	}
	if strings.Count(comments[ivy], "we bring plates") != 1 {
		t.Errorf("Comment for Ivy duplicated: %q", comments[ivy])
	}
}

func TestCommentsByCaregiverBridgingAdult(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	// Jon bridges two households: he shares Oli with Ivy and Pia with Kay
	ivy := h.adult(t, "Ivy")
	jon := h.adult(t, "Jon")
	kay := h.adult(t, "Kay")
	oli := h.youth(t, "Oli")
	pia := h.youth(t, "Pia")

	h.link(t, ivy, oli)
	h.link(t, jon, oli)
	h.link(t, jon, pia)
	h.link(t, kay, pia)

	eventID := h.event(t, "Fun Run", nil)

	if _, err := h.service.SetFamilyRSVP(ivy, eventID, models.AnswerYes, nil, []int64{oli}, "first note", 0); err != nil {
		t.Fatalf("Ivy's submission failed: %v", err)
	}
	if _, err := h.service.SetFamilyRSVP(kay, eventID, models.AnswerYes, nil, []int64{pia}, "second note", 0); err != nil {
		t.Fatalf("Kay's submission failed: %v", err)
	}

	comments, err := h.service.CommentsByCaregiver(eventID)
	if err != nil {
		t.Fatalf("CommentsByCaregiver failed: %v", err)
	}

	// The bridging adult accumulates both texts, joined by one blank line,
	// in rsvp id order
	if comments[jon] != "first note\n\nsecond note" {
		t.Errorf("Comment for Jon = %q, want both notes joined by a blank line", comments[jon])
	}

	// Neither note leaks across the bridge to the other household
	if comments[ivy] != "first note" {
		t.Errorf("Comment for Ivy = %q, want only her own note", comments[ivy])
	}
	if comments[kay] != "second note" {
		t.Errorf("Comment for Kay = %q, want only her own note", comments[kay])
	}

	// Identical texts are recorded once for the bridging adult, not appended
	dedupEventID := h.event(t, "Repeat Night", nil)
	if _, err := h.service.SetFamilyRSVP(ivy, dedupEventID, models.AnswerYes, nil, []int64{oli}, "same note", 0); err != nil {
		t.Fatalf("Ivy's submission failed: %v", err)
	}
	if _, err := h.service.SetFamilyRSVP(kay, dedupEventID, models.AnswerYes, nil, []int64{pia}, "same note", 0); err != nil {
		t.Fatalf("Kay's submission failed: %v", err)
	}

	comments, err = h.service.CommentsByCaregiver(dedupEventID)
	if err != nil {
		t.Fatalf("CommentsByCaregiver failed: %v", err)
	}
	if comments[jon] != "same note" {
		t.Errorf("Comment for Jon = %q, want the shared text exactly once", comments[jon])
	}
}

func TestResolveByAdultPrefersOwnRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	ann := h.adult(t, "Ann")
	bob := h.adult(t, "Bob")
	cid := h.adult(t, "Cid")
	yuy := h.youth(t, "Yuy")
	h.link(t, ann, yuy)
	h.link(t, bob, yuy)
	h.link(t, cid, yuy)

	eventID := h.event(t, "Campout", nil)

	// Duplicate records for one family cannot arise through SetFamilyRSVP;
	// seed them straight through the repository to model legacy data
	annRSVP, err := h.rsvps.Insert(eventID, ann, models.AnswerYes, nil, 0)
	if err != nil {
		t.Fatalf("Failed to insert Ann's rsvp: %v", err)
	}
	bobRSVP, err := h.rsvps.Insert(eventID, bob, models.AnswerMaybe, nil, 0)
	if err != nil {
		t.Fatalf("Failed to insert Bob's rsvp: %v", err)
	}

	// Each creator resolves to the row they created themselves
	resolved, err := h.service.ResolveByAdult(eventID, bob)
	if err != nil {
		t.Fatalf("ResolveByAdult(bob) failed: %v", err)
	}
	if resolved == nil || resolved.ID != bobRSVP {
		t.Errorf("Bob resolved to %v, want his own RSVP %d", resolved, bobRSVP)
	}

	resolved, err = h.service.ResolveByAdult(eventID, ann)
	if err != nil {
		t.Fatalf("ResolveByAdult(ann) failed: %v", err)
	}
	if resolved == nil || resolved.ID != annRSVP {
		t.Errorf("Ann resolved to %v, want her own RSVP %d", resolved, annRSVP)
	}

	// A co-caregiver who created neither falls back to the lowest id
	resolved, err = h.service.ResolveByAdult(eventID, cid)
	if err != nil {
		t.Fatalf("ResolveByAdult(cid) failed: %v", err)
	}
	if resolved == nil || resolved.ID != annRSVP {
		t.Errorf("Cid resolved to %v, want lowest-id RSVP %d", resolved, annRSVP)
	}
}

func TestEventAggregates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newTestHarness(t)

	lena := h.adult(t, "Lena")
	marc := h.adult(t, "Marc")
	rui := h.youth(t, "Rui")
	sam := h.youth(t, "Sam")
	h.link(t, lena, rui)
	h.link(t, marc, sam)

	eventID := h.event(t, "BBQ", nil)

	r1, err := h.service.SetFamilyRSVP(lena, eventID, models.AnswerYes, []int64{lena}, []int64{rui}, "", 2)
	if err != nil {
		t.Fatalf("Lena's submission failed: %v", err)
	}
	if _, err := h.service.SetFamilyRSVP(marc, eventID, models.AnswerMaybe, []int64{marc}, []int64{sam}, "", 1); err != nil {
		t.Fatalf("Marc's submission failed: %v", err)
	}

	guests, err := h.service.GuestTotal(eventID, models.AnswerYes)
	if err != nil {
		t.Fatalf("GuestTotal failed: %v", err)
	}
	if guests != 2 {
		t.Errorf("GuestTotal(yes) = %d, want 2", guests)
	}

	counts, err := h.service.ParticipantCounts(eventID, models.AnswerYes)
	if err != nil {
		t.Fatalf("ParticipantCounts failed: %v", err)
	}
	if counts.Adults != 1 || counts.Youths != 1 {
		t.Errorf("ParticipantCounts(yes) = %+v, want 1 adult and 1 youth", counts)
	}

	adults, youths, err := h.service.ParticipantNames(eventID, models.AnswerMaybe)
	if err != nil {
		t.Fatalf("ParticipantNames failed: %v", err)
	}
	if !reflect.DeepEqual(adults, []string{"Marc"}) || !reflect.DeepEqual(youths, []string{"Sam"}) {
		t.Errorf("ParticipantNames(maybe) = %v / %v, want [Marc] / [Sam]", adults, youths)
	}

	summary, err := h.service.MemberSummary(r1)
	if err != nil {
		t.Fatalf("MemberSummary failed: %v", err)
	}
	if summary.AdultCount != 1 || summary.YouthCount != 1 {
		t.Errorf("MemberSummary = %+v, want 1/1", summary)
	}

	if _, err := h.service.MemberSummary(99999); !errors.Is(err, ErrRSVPNotFound) {
		t.Errorf("MemberSummary(missing) error = %v, want ErrRSVPNotFound", err)
	}
}

func strPtr(s string) *string {
	return &s
}
