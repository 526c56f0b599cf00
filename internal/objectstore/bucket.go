// Package objectstore keeps attachment bytes on local disk and hands out
// short-lived signed links to them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidPath  = errors.New("invalid object path")
	ErrInvalidToken = errors.New("invalid or expired link")
	ErrNotFound     = errors.New("object not found")
)

const downloadPath = "/storage/object"

type Bucket struct {
	root    string
	secret  []byte
	baseURL string
}

type objectClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// NewBucket creates the root directory if needed. baseURL is the public
// origin that signed links are minted against.
func NewBucket(root, secret, baseURL string) (*Bucket, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	return &Bucket{
		root:    root,
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (b *Bucket) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if path == "" || strings.Contains(path, "..") || clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}

// Upload writes r to path and returns the number of bytes stored.
func (b *Bucket) Upload(ctx context.Context, path string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	full, err := b.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create object: %w", err)
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("store object: %w", err)
	}
	return n, nil
}

// Delete removes the object at path. Deleting a missing object is not an error.
func (b *Bucket) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// SignedURL mints a link to path that stops working after ttl.
func (b *Bucket) SignedURL(path string, ttl time.Duration) (string, error) {
	if _, err := b.resolve(path); err != nil {
		return "", err
	}
	now := time.Now()
	claims := objectClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("sign object link: %w", err)
	}
	return b.baseURL + downloadPath + "?token=" + url.QueryEscape(token), nil
}

// Open verifies a signed link token and returns the file path it grants.
func (b *Bucket) Open(token string) (string, error) {
	var claims objectClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	full, err := b.resolve(claims.Path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", ErrNotFound
	}
	return full, nil
}
