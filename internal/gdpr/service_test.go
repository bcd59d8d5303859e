package gdpr

import (
	"bytes"
	"context"
	"testing"

	"jobbooster-backend/internal/activitylogs"
	"jobbooster-backend/internal/documents"
	"jobbooster-backend/internal/generated"
	"jobbooster-backend/internal/sessions"
	"jobbooster-backend/internal/shared/storage/object/local"
	"jobbooster-backend/internal/users"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	docRepo := documents.NewMemoryRepo()
	return &Service{
		Consents: NewMemoryConsentRepo(),
		Users:    users.NewService(users.NewMemoryRepo()),
		Documents: &documents.Service{
			Store:           local.New(t.TempDir()),
			Repo:            docRepo,
			StorageProvider: "local",
		},
		Generated: &generated.Service{Repo: generated.NewMemoryRepo(), DocRepo: docRepo},
		Activity:  activitylogs.NewMemoryRepo(),
		Sessions:  sessions.NewMemoryRepo(),
	}
}

func seedUser(t *testing.T, svc *Service, userID string) {
	t.Helper()
	ctx := context.Background()
	if err := svc.Users.UpsertFromAuth(ctx, users.User{ID: userID, Email: userID + "@example.com", FullName: "Test User"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestConsentRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetConsent(ctx, "user-1", "telepathy", true); err != ErrInvalidInput {
		t.Fatalf("unknown purpose err = %v, want ErrInvalidInput", err)
	}

	if _, err := svc.SetConsent(ctx, "user-1", PurposeAnalytics, true); err != nil {
		t.Fatalf("set consent: %v", err)
	}
	if _, err := svc.SetConsent(ctx, "user-1", PurposeAnalytics, false); err != nil {
		t.Fatalf("update consent: %v", err)
	}

	consents, err := svc.ListConsents(ctx, "user-1")
	if err != nil {
		t.Fatalf("list consents: %v", err)
	}
	if len(consents) != 1 || consents[0].Granted {
		t.Fatalf("expected single revoked consent, got %+v", consents)
	}
}

func TestExportCollectsAllStores(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, "user-1")

	doc, err := svc.Documents.Upload(ctx, "user-1", "cv.txt", bytes.NewReader([]byte("plain text cv")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Generated.Create(ctx, "user-1", generated.CreateInput{
		DocumentID: doc.ID,
		Kind:       generated.KindCoverLetter,
		Content:    "Dear team,",
	}); err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := svc.SetConsent(ctx, "user-1", PurposeMarketing, true); err != nil {
		t.Fatalf("set consent: %v", err)
	}

	sessionSvc := &sessions.Service{Repo: svc.Sessions}
	if _, err := sessionSvc.Start(ctx, "user-1", "Mozilla/5.0", "203.0.113.7"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	activitySvc := &activitylogs.Service{Repo: svc.Activity}
	activitySvc.Record(ctx, "user-1", "document.upload", "203.0.113.7", nil)

	export, err := svc.ExportData(ctx, "user-1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.User.ID != "user-1" {
		t.Fatalf("export user = %+v", export.User)
	}
	if len(export.Documents) != 1 || len(export.Generated) != 1 || len(export.Activity) != 1 ||
		len(export.Sessions) != 1 || len(export.Consents) != 1 {
		t.Fatalf("incomplete export: docs=%d gen=%d act=%d sess=%d cons=%d",
			len(export.Documents), len(export.Generated), len(export.Activity),
			len(export.Sessions), len(export.Consents))
	}
}

func TestDeleteAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedUser(t, svc, "user-1")

	doc, err := svc.Documents.Upload(ctx, "user-1", "cv.txt", bytes.NewReader([]byte("plain text cv")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Generated.Create(ctx, "user-1", generated.CreateInput{
		Kind:    generated.KindTailoredCV,
		Content: "tailored",
	}); err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := svc.SetConsent(ctx, "user-1", PurposeAnalytics, true); err != nil {
		t.Fatalf("set consent: %v", err)
	}
	sessionSvc := &sessions.Service{Repo: svc.Sessions}
	session, err := sessionSvc.Start(ctx, "user-1", "", "")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if err := svc.DeleteAccount(ctx, "user-1"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := svc.Documents.Get(ctx, "user-1", doc.ID); err == nil {
		t.Fatal("document should be gone after account deletion")
	}
	remaining, err := svc.Generated.List(ctx, "user-1", 0, 0)
	if err != nil {
		t.Fatalf("list content: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("generated content left behind: %+v", remaining)
	}

	sessionList, err := svc.Sessions.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessionList) != 1 || sessionList[0].ID != session.ID || sessionList[0].Active() {
		t.Fatalf("expected revoked session, got %+v", sessionList)
	}

	consents, err := svc.ListConsents(ctx, "user-1")
	if err != nil {
		t.Fatalf("list consents: %v", err)
	}
	if len(consents) != 0 {
		t.Fatalf("consents left behind: %+v", consents)
	}

	user, err := svc.Users.GetByID(ctx, "user-1")
	if err == nil && user.Email != "" {
		t.Fatalf("profile not redacted: %+v", user)
	}
}
