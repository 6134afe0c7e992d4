package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"flowdraw/draw"
)

// API talks to the flowdraw HTTP endpoints: hydration, shape deletes, and
// the auth/room lookups a client needs before it can join a room.
type API struct {
	base  string
	token string
	hc    *http.Client
}

// NewAPI builds a client for the given base URL, e.g. "http://localhost:8080".
// token may be empty for the unauthenticated endpoints and set later via
// SetToken after Signin.
func NewAPI(base, token string) *API {
	return &API{
		base:  base,
		token: token,
		hc:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken replaces the bearer token used on authenticated requests.
func (a *API) SetToken(token string) { a.token = token }

type chatMessage struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// Shapes hydrates a room: it fetches the persisted mutation log and decodes
// each entry into a shape. The server returns most-recent-first; the result
// is reversed to oldest-first so replay order matches creation order.
// Entries that do not decode are skipped with a log line.
func (a *API) Shapes(ctx context.Context, roomID string) ([]draw.Shape, error) {
	var payload struct {
		Messages []chatMessage `json:"messages"`
	}
	if err := a.get(ctx, "/chats/"+roomID, &payload); err != nil {
		return nil, fmt.Errorf("hydrate room %s: %w", roomID, err)
	}

	shapes := make([]draw.Shape, 0, len(payload.Messages))
	for i := len(payload.Messages) - 1; i >= 0; i-- {
		shape, err := draw.DecodeEnvelope(payload.Messages[i].Message)
		if err != nil {
			log.Printf("[API] skipping undecodable entry %d in room %s: %v", payload.Messages[i].ID, roomID, err)
			continue
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

// DeleteShape removes a shape from the persisted log by its id. Implements
// draw.ShapeStore; the relay never sees deletes.
func (a *API) DeleteShape(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.base+"/drawing/"+id, nil)
	if err != nil {
		return err
	}
	a.authorize(req)

	resp, err := a.hc.Do(req)
	if err != nil {
		return fmt.Errorf("delete shape %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete shape %s: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}

// Signin exchanges credentials for a bearer token and stores it on the
// client for subsequent requests.
func (a *API) Signin(ctx context.Context, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/signin", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("signin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signin: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("signin: decode response: %w", err)
	}
	a.token = payload.Token
	return payload.Token, nil
}

// Room is the subset of room fields a client needs.
type Room struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// RoomBySlug resolves a human-readable room slug to the room record.
func (a *API) RoomBySlug(ctx context.Context, slug string) (Room, error) {
	var payload struct {
		Room Room `json:"room"`
	}
	if err := a.get(ctx, "/room/"+slug, &payload); err != nil {
		return Room{}, fmt.Errorf("room %s: %w", slug, err)
	}
	return payload.Room, nil
}

func (a *API) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+path, nil)
	if err != nil {
		return err
	}
	a.authorize(req)

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) authorize(req *http.Request) {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
}
