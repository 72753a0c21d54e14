// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

func TestParseAcquisition(t *testing.T) {
	for _, a := range scopemeter.Acquisitions() {
		got, err := parseAcquisition(acquisitionFlagName(a))
		if err != nil || got != a {
			t.Errorf("parseAcquisition(%q) = %v, %v", acquisitionFlagName(a), got, err)
		}
	}
	if got, err := parseAcquisition("Dual-Power"); err != nil || got != scopemeter.DualPower {
		t.Errorf("mixed case: %v, %v", got, err)
	}
	if _, err := parseAcquisition("dual power"); err == nil {
		t.Error("expected an error for a name with spaces")
	}
}

func TestConfigMarshalYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	cfg.Timeout = 1500 * time.Millisecond

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	text := string(out)
	for _, want := range []string{"port: /dev/ttyUSB0", "timeout: 1.5s", "output_dir: .", "level: info"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}
}

func TestMenuModel(t *testing.T) {
	items := []menuItem{{title: "single"}, {title: "first + second"}, {title: "first - second"}}

	tests := []struct {
		name   string
		key    tea.KeyMsg
		choice int
	}{
		{"letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}}, 1},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, 0},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, _ := newMenuModel("Operation", items).Update(tt.key)
			m := model.(menuModel)
			if !m.done || m.choice != tt.choice {
				t.Errorf("done=%v choice=%d, expected %d", m.done, m.choice, tt.choice)
			}
		})
	}

	// Letters past the last item are ignored
	model, _ := newMenuModel("Operation", items).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if model.(menuModel).done {
		t.Error("out of range letter closed the menu")
	}
}

func TestMenuLetter(t *testing.T) {
	if menuLetter(0) != 'a' || menuLetter(4) != 'e' {
		t.Errorf("menuLetter = %c, %c", menuLetter(0), menuLetter(4))
	}
}

// ============================================================
// WebSocket Connection Tests
// ============================================================

func newEchoServer(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketConnection(t *testing.T) {
	srv := newEchoServer(t)
	conn, err := OpenWebSocketConnection("ws"+strings.TrimPrefix(srv.URL, "http"), "", "", false)
	if err != nil {
		t.Fatalf("OpenWebSocketConnection failed: %v", err)
	}
	defer conn.Close()

	if err := conn.SetReadTimeout(50 * time.Millisecond); err != nil {
		t.Fatalf("SetReadTimeout failed: %v", err)
	}
	if err := conn.SetBaudRate(scopemeter.FastBaudRate); err != nil {
		t.Fatalf("SetBaudRate failed: %v", err)
	}

	buf := make([]byte, 8)
	if n, err := conn.Read(buf); n != 0 || err != nil {
		t.Fatalf("idle Read = %d, %v; expected a silent timeout", n, err)
	}

	if _, err := conn.Write([]byte("ID\r")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := conn.SetReadTimeout(2 * time.Second); err != nil {
		t.Fatalf("SetReadTimeout failed: %v", err)
	}

	// Deliver the message a byte at a time
	small := make([]byte, 1)
	var got []byte
	for len(got) < 3 {
		n, err := conn.Read(small)
		if err != nil || n == 0 {
			t.Fatalf("Read = %d, %v after %q", n, err, got)
		}
		got = append(got, small[:n]...)
	}
	if string(got) != "ID\r" {
		t.Errorf("echo = %q", got)
	}
}

func TestWebSocketConnection_ResetInputBuffer(t *testing.T) {
	srv := newEchoServer(t)
	conn, err := OpenWebSocketConnection("ws"+strings.TrimPrefix(srv.URL, "http"), "", "", false)
	if err != nil {
		t.Fatalf("OpenWebSocketConnection failed: %v", err)
	}
	defer conn.Close()

	conn.Write([]byte("stale"))
	time.Sleep(100 * time.Millisecond)
	if err := conn.(*WebSocketConnection).ResetInputBuffer(); err != nil {
		t.Fatalf("ResetInputBuffer failed: %v", err)
	}

	conn.SetReadTimeout(50 * time.Millisecond)
	buf := make([]byte, 8)
	if n, _ := conn.Read(buf); n != 0 {
		t.Errorf("read %q after reset", buf[:n])
	}
}

func TestOpenWebSocketConnection_BadScheme(t *testing.T) {
	if _, err := OpenWebSocketConnection("http://localhost:1", "", "", false); err == nil {
		t.Fatal("expected an error for an http URL")
	}
}

func TestOpenConnection_NoTarget(t *testing.T) {
	if _, _, err := OpenConnection(DefaultConfig()); err == nil {
		t.Fatal("expected an error without a port or URL")
	}
}
