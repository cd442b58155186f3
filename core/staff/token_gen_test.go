package staff

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey = []byte("secret")
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	now := time.Now()
	stf := Staff{
		ID:        "3f6c0cbe-13e7-46fc-9572-a0c7e30ba1b4",
		Name:      "T",
		Username:  "t",
		Email:     "t@test.test",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = stf.SetPassword("pwd")

	validToken, err := MakeToken(stf)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := passwordResetTimeoutDelta + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(stf)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	nowFunc = time.Now // reset

	tests := []struct {
		name    string
		stf     Staff
		token   string
		wantErr error
	}{
		{name: "no token", stf: stf, wantErr: errInvalidToken},
		{name: "invalid parts len", stf: stf, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", stf: stf, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", stf: stf, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", stf: stf, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", stf: stf, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", stf: stf, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyToken(tt.stf, tt.token); err != tt.wantErr {
				t.Errorf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
