package jwt

import (
	"testing"
	"time"
)

func TestManager_GenerateAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	manager := NewManager("secret-a", time.Hour)
	other := NewManager("secret-b", time.Hour)

	token, err := manager.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestManager_Verify_Expired(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.Generate("user-1", "alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := manager.Verify(token); err != ErrExpiredToken {
		t.Errorf("Verify expired token = %v, want ErrExpiredToken", err)
	}
}

func TestManager_Verify_Garbage(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	if _, err := manager.Verify("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Verify garbage = %v, want ErrInvalidToken", err)
	}
}
