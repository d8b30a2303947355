package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/isvaryam/internal/models"
)

// Domain errors returned by the OTP ledger.
var (
	ErrAlreadyRegistered = errors.New("user already exists for this email")
	ErrOtpNotFound       = errors.New("no otp record for this email")
	ErrOtpExpired        = errors.New("otp expired")
	ErrOtpMismatch       = errors.New("otp does not match")
)

const (
	otpTTL           = 5 * time.Minute
	verifiedEmailTTL = 10 * time.Minute
)

// PendingProfile is the registration data stashed with an OTP until the code
// is confirmed.
type PendingProfile struct {
	Name         string
	PasswordHash string
	Address      models.Address
	Phone        string
}

// OtpService issues and validates short-lived passcodes scoped to an email.
// Codes are single-use: a successful verification removes every record for
// the email, so neither the confirmed code nor a superseded one can replay.
type OtpService struct {
	db     *gorm.DB
	mailer Mailer
}

// NewOtpService constructs an OtpService.
func NewOtpService(db *gorm.DB, mailer Mailer) *OtpService {
	return &OtpService{db: db, mailer: mailer}
}

// NormalizeEmail lowercases and trims an email so it can serve as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a 6-digit code for the email, stores it with a 5-minute
// expiry and dispatches it by mail. A newly issued code supersedes any
// earlier unconsumed one for the same email. Fails with ErrAlreadyRegistered
// when a user account already exists, before anything is sent.
func (s *OtpService) Issue(ctx context.Context, email string, pending *PendingProfile) error {
	email = NormalizeEmail(email)

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return ErrAlreadyRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	code, err := generateOtpCode()
	if err != nil {
		return err
	}

	record := models.OtpVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if pending != nil {
		record.HasPendingProfile = true
		record.PendingName = pending.Name
		record.PendingPasswordHash = pending.PasswordHash
		record.PendingAddress = pending.Address
		record.PendingPhone = pending.Phone
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}

	body := fmt.Sprintf("Your OTP is %s. It will expire in 5 minutes.", code)
	if err := s.mailer.Send(email, "Your OTP Code", body); err != nil {
		// Leave the stored record to expire on its own.
		log.Printf("[Otp] failed to send code to %s: %v", email, err)
		return err
	}

	return nil
}

// Verify checks the submitted code against the newest record for the email.
// On success every record for the email is deleted. When the record carries a
// pending registration profile it is returned to the caller; otherwise the
// email is marked verified in the store for a bounded window.
func (s *OtpService) Verify(ctx context.Context, email, code string) (*PendingProfile, error) {
	email = NormalizeEmail(email)

	var record models.OtpVerification
	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOtpNotFound
		}
		return nil, err
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, ErrOtpExpired
	}

	if record.Code != code {
		return nil, ErrOtpMismatch
	}

	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.OtpVerification{}).Error; err != nil {
		return nil, err
	}

	if record.HasPendingProfile {
		return &PendingProfile{
			Name:         record.PendingName,
			PasswordHash: record.PendingPasswordHash,
			Address:      record.PendingAddress,
			Phone:        record.PendingPhone,
		}, nil
	}

	verified := models.VerifiedEmail{
		Email:     email,
		ExpiresAt: time.Now().Add(verifiedEmailTTL),
	}
	if err := s.db.WithContext(ctx).Create(&verified).Error; err != nil {
		return nil, err
	}

	return nil, nil
}

// ConsumeVerified reports whether the email holds an unexpired verified mark
// and removes it, so a verification grants exactly one passwordless login.
func (s *OtpService) ConsumeVerified(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)

	var record models.VerifiedEmail
	err := s.db.WithContext(ctx).
		Where("email = ? AND expires_at > ?", email, time.Now()).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.VerifiedEmail{}).Error; err != nil {
		return false, err
	}

	return true, nil
}

// generateOtpCode draws a 6-digit code uniformly from [100000, 999999].
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
