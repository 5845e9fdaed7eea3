package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPasswordHash("correct-horse", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("-uid1", "juan@farm.com", "farmer", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UID != "-uid1" || claims.Email != "juan@farm.com" || claims.Role != "farmer" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	if _, err := ParseJWT("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestParseJWTRejectsExpired(t *testing.T) {
	token, err := GenerateJWT("-uid1", "juan@farm.com", "farmer", "", time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := ParseJWT(token); err == nil {
		t.Error("expired token accepted")
	}
}