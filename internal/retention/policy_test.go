package retention

import "testing"

func TestPolicyForEveryDataType(t *testing.T) {
	for _, dt := range AllDataTypes() {
		policy := PolicyFor(dt)
		if policy.RetentionDays <= 0 {
			t.Errorf("%s: retentionDays must be positive, got %d", dt, policy.RetentionDays)
		}
		switch policy.DeletionMode {
		case ModeSoftDelete, ModeHardDelete, ModeAnonymize:
		default:
			t.Errorf("%s: unknown deletion mode %q", dt, policy.DeletionMode)
		}
		if policy.NotifyBeforeDeletion && policy.NotificationDays <= 0 {
			t.Errorf("%s: notification enabled but notificationDays is %d", dt, policy.NotificationDays)
		}
		if policy.NotifyBeforeDeletion && policy.NotificationDays >= policy.RetentionDays {
			t.Errorf("%s: notification window %d exceeds retention %d", dt, policy.NotificationDays, policy.RetentionDays)
		}
		if policy.LegalBasis == "" {
			t.Errorf("%s: missing legal basis", dt)
		}
	}
}

func TestPolicyForUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown data type")
		}
	}()
	PolicyFor(DataType("bogus"))
}

func TestParseDataType(t *testing.T) {
	for _, dt := range AllDataTypes() {
		got, err := ParseDataType(string(dt))
		if err != nil {
			t.Fatalf("ParseDataType(%q): %v", dt, err)
		}
		if got != dt {
			t.Fatalf("ParseDataType(%q) = %q", dt, got)
		}
	}

	if _, err := ParseDataType("emails"); err == nil {
		t.Fatal("expected error for unknown data type")
	}
}
