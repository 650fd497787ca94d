package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"
)

var ErrUnauthorized = fmt.Errorf("session %w", domain.ErrUnauthorized)
var ErrInvalidIdentity = fmt.Errorf("%w: invalid identity", domain.ErrValidation)

type Status string

const (
	StatusCreated          Status = "created"
	StatusOK               Status = "ok"
	StatusPasswordRequired Status = "password_required"
)

const (
	tokenBytes     = 20
	passwordLength = 6
	passwordChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Credentials struct {
	Password string
	Token    string
}

// Grant is the outcome of a successful Login. Password is only set when a
// lane session was created by this call.
type Grant struct {
	Status   Status `json:"status"`
	Token    string `json:"session_id,omitempty"`
	Password string `json:"password,omitempty"`
}

type Stores interface {
	Open(ctx context.Context, code string) (*store.Store, error)
}

type Authority struct {
	stores Stores
	log    *zap.Logger
}

func NewAuthority(stores Stores, log *zap.Logger) *Authority {
	return &Authority{stores: stores, log: log}
}

// Login authenticates id against the event's stored credentials and issues
// or re-confirms a session token.
func (a *Authority) Login(ctx context.Context, code string, id domain.Identity, cred Credentials) (Grant, error) {
	if !id.Valid() {
		return Grant{}, ErrInvalidIdentity
	}
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return Grant{}, err
	}

	var g Grant
	err = s.Update(ctx, func(tx *store.Tx) error {
		var err error
		if id.Role() == domain.RoleClient {
			g, err = loginLane(tx, id, cred)
		} else {
			g, err = loginShared(tx, id, cred)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			a.log.Warn("login rejected", zap.String("code", code), zap.Stringer("identity", id))
		}
		return Grant{}, err
	}
	if g.Status == StatusCreated {
		a.log.Info("lane session created", zap.String("code", code), zap.Stringer("identity", id))
	}
	return g, nil
}

// loginShared handles host and viewer, whose secret lives in the event
// properties.
func loginShared(tx *store.Tx, id domain.Identity, cred Credentials) (Grant, error) {
	key := domain.PropHostPassword
	if id.Role() == domain.RoleViewer {
		key = domain.PropViewerPassword
	}
	secret, _, err := tx.Property(key)
	if err != nil {
		return Grant{}, err
	}

	existing, err := tx.Session(id.Role(), id.Identifier())
	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return Grant{}, err
	}
	if err == nil && cred.Token != "" && tokenMatches(existing.TokenHash, cred.Token) {
		return Grant{Status: StatusOK, Token: cred.Token}, nil
	}

	if secret != "" {
		if cred.Password == "" {
			return Grant{Status: StatusPasswordRequired}, nil
		}
		if !secretMatches(secret, cred.Password) {
			return Grant{}, ErrUnauthorized
		}
	}
	return issue(tx, id, "", StatusOK)
}

func loginLane(tx *store.Tx, id domain.Identity, cred Credentials) (Grant, error) {
	existing, err := tx.Session(id.Role(), id.Identifier())
	if errors.Is(err, store.ErrSessionNotFound) {
		password, err := randomPassword()
		if err != nil {
			return Grant{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Grant{}, fmt.Errorf("hash lane password: %w", err)
		}
		g, err := issue(tx, id, string(hash), StatusCreated)
		g.Password = password
		return g, err
	}
	if err != nil {
		return Grant{}, err
	}

	if cred.Token != "" && tokenMatches(existing.TokenHash, cred.Token) {
		return Grant{Status: StatusOK, Token: cred.Token}, nil
	}
	if cred.Password == "" {
		return Grant{Status: StatusPasswordRequired}, nil
	}
	pw := strings.ToUpper(strings.TrimSpace(cred.Password))
	if bcrypt.CompareHashAndPassword([]byte(existing.Password), []byte(pw)) != nil {
		return Grant{}, ErrUnauthorized
	}
	return issue(tx, id, existing.Password, StatusOK)
}

// issue stores a fresh token for id, replacing any previous one.
func issue(tx *store.Tx, id domain.Identity, passwordHash string, status Status) (Grant, error) {
	token, err := randomToken()
	if err != nil {
		return Grant{}, err
	}
	err = tx.SaveSession(&domain.Session{
		Role:       id.Role(),
		Identifier: id.Identifier(),
		TokenHash:  digest(token),
		Password:   passwordHash,
	})
	if err != nil {
		return Grant{}, err
	}
	return Grant{Status: status, Token: token}, nil
}

// Verify reports whether token is the current session token of id.
func (a *Authority) Verify(ctx context.Context, code string, id domain.Identity, token string) (bool, error) {
	if token == "" || !id.Valid() {
		return false, nil
	}
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return false, err
	}
	var ok bool
	err = s.View(ctx, func(tx *store.Tx) error {
		sess, err := tx.Session(id.Role(), id.Identifier())
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = tokenMatches(sess.TokenHash, token)
		return nil
	})
	return ok, err
}

// Require is Verify that fails with ErrUnauthorized instead of reporting false.
func (a *Authority) Require(ctx context.Context, code string, id domain.Identity, token string) error {
	ok, err := a.Verify(ctx, code, id, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Revoke deletes the session of a lane. Its next login is a first contact.
func (a *Authority) Revoke(ctx context.Context, code string, lane int) (bool, error) {
	id := domain.Lane(lane)
	if !id.Valid() {
		return false, ErrInvalidIdentity
	}
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return false, err
	}
	var deleted bool
	err = s.Update(ctx, func(tx *store.Tx) error {
		var derr error
		deleted, derr = tx.DeleteSession(id.Role(), id.Identifier())
		return derr
	})
	if err == nil && deleted {
		a.log.Info("lane session revoked", zap.String("code", code), zap.Int("lane", lane))
	}
	return deleted, err
}

// Lanes lists lanes holding a session, in numeric order.
func (a *Authority) Lanes(ctx context.Context, code string) ([]int, error) {
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return nil, err
	}
	lanes := []int{}
	err = s.View(ctx, func(tx *store.Tx) error {
		ss, err := tx.Sessions(domain.RoleClient)
		if err != nil {
			return err
		}
		for _, sess := range ss {
			n, err := strconv.Atoi(sess.Identifier)
			if err != nil {
				a.log.Warn("skipping malformed lane session", zap.String("code", code), zap.String("identifier", sess.Identifier))
				continue
			}
			lanes = append(lanes, n)
		}
		return nil
	})
	sort.Ints(lanes)
	return lanes, err
}

func digest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func tokenMatches(storedDigest, token string) bool {
	return subtle.ConstantTimeCompare([]byte(storedDigest), []byte(digest(token))) == 1
}

// secretMatches compares fixed-size digests of both values.
func secretMatches(stored, given string) bool {
	a := blake2b.Sum256([]byte(stored))
	b := blake2b.Sum256([]byte(given))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func randomPassword() (string, error) {
	out := make([]byte, passwordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordChars[n.Int64()]
	}
	return string(out), nil
}
