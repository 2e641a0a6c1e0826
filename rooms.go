/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/codenames/games/codenames"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	playerCookieName = "codenames_id"
	maxCreateBody    = 1024
	qrSize           = 320
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type invalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type problem struct {
	Title         string         `json:"title"`
	InvalidParams []invalidParam `json:"invalid_params,omitempty"`
}

type createRoomRequest struct {
	Lang string `json:"lang"`
}

type createRoomResponse struct {
	RoomID   string `json:"room_id"`
	RoomSlug string `json:"room_slug"`
}

func getOrSetPlayerID(cfg *Config, w http.ResponseWriter, r *http.Request) codenames.ViewerID {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return codenames.ViewerID(c.Value)
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     cfg.prefix + "/",
		HttpOnly: true,
		Secure:   cfg.scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return codenames.ViewerID(id)
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

func serveCreateRoom(cfg *Config, rooms *RoomRegistry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req createRoomRequest

		dec := json.NewDecoder(io.LimitReader(r.Body, maxCreateBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			title := "Invalid request body."
			if errors.Is(err, io.EOF) {
				title = "Initial parameters are missing."
			}
			if err := writeJSON(cfg, w, http.StatusBadRequest, problem{Title: title}); err != nil {
				errs <- err
			}
			return
		}

		hub, err := rooms.Create(strings.TrimSpace(req.Lang))
		switch {
		case errors.Is(err, ErrUnsupportedLang):
			err = writeJSON(cfg, w, http.StatusBadRequest, problem{
				Title:         "Your request parameters didn't validate.",
				InvalidParams: []invalidParam{{Name: "lang", Reason: "unsupported lang"}},
			})
		case err != nil:
			errs <- err
			err = writeJSON(cfg, w, http.StatusInternalServerError, problem{Title: "Unable to create room."})
		default:
			err = writeJSON(cfg, w, http.StatusOK, createRoomResponse{RoomID: hub.id, RoomSlug: hub.slug})
		}
		if err != nil {
			errs <- err
			return
		}

		logf(cfg, "SERVE: Create room request from %s in %s",
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// redirectNewRoom handles GET /new by creating a room and redirecting to it.
func redirectNewRoom(cfg *Config, rooms *RoomRegistry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		hub, err := rooms.Create(r.URL.Query().Get("lang"))
		if errors.Is(err, ErrUnsupportedLang) {
			notFound(cfg, w, "Unsupported language.")
			return
		}
		if err != nil {
			errs <- err
			http.Error(w, "unable to create room", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, cfg.prefix+"/room/"+hub.slug, http.StatusTemporaryRedirect)
	}
}

func notFound(cfg *Config, w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(http.StatusNotFound)

	_, _ = io.WriteString(w, newPage("Not Found", body))
}

func serveRoomPage(cfg *Config, rooms *RoomRegistry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := rooms.Lookup(ps.ByName("slug")); !ok {
			notFound(cfg, w, "That room does not exist or has closed.")
			return
		}

		_ = getOrSetPlayerID(cfg, w, r)

		serveEmbedded(cfg, w, r, "assets/room.html", errs)
	}
}

func serveRoomSocket(cfg *Config, rooms *RoomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		hub, ok := rooms.Lookup(ps.ByName("slug"))
		if !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}

		var cookie codenames.ViewerID
		if c, err := r.Cookie(playerCookieName); err == nil {
			cookie = codenames.ViewerID(c.Value)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ROOMS: Upgrade failed for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:   conn,
			send:   make(chan any, sendBuffer),
			cookie: cookie,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		logf(cfg, "ROOMS: %s connected to room %s", realIP(r), hub.slug)

		go client.writePump()
		client.readPump(hub)
	}
}

// serveRoomQR renders the room URL as a PNG QR code.
func serveRoomQR(cfg *Config, rooms *RoomRegistry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := rooms.Lookup(ps.ByName("slug")); !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}

		scheme := cfg.scheme()
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			errs <- err
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func registerRooms(cfg *Config, rooms *RoomRegistry, mux *httprouter.Router, errs chan<- error) {
	mux.POST(cfg.prefix+"/create/room", serveCreateRoom(cfg, rooms, errs))
	mux.GET(cfg.prefix+"/new", redirectNewRoom(cfg, rooms, errs))
	mux.GET(cfg.prefix+"/room/:slug", serveRoomPage(cfg, rooms, errs))
	mux.GET(cfg.prefix+"/room/:slug/ws", serveRoomSocket(cfg, rooms))
	mux.GET(cfg.prefix+"/room/:slug/qr", serveRoomQR(cfg, rooms, errs))
}
