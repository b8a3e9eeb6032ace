// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// PAYLOAD DECODING TESTS
// =============================================================================

func TestDecodeContent_StructuredReply(t *testing.T) {
	body := `{"status":"success","task_title":"Fix Leak","steps":[
		{"step":1,"instruction":"Turn off valve","chunks":[4,7],"images":["/data/img1.png","/data/img2.png"]}]}`

	c := DecodeContent([]byte(body))
	if c.IsText() {
		t.Fatal("structured reply decoded as text")
	}
	p := c.Payload
	if p.Status != StatusSuccess || p.TaskTitle != "Fix Leak" {
		t.Errorf("payload = %+v", p)
	}
	if len(p.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(p.Steps))
	}
	s := p.Steps[0]
	if s.Step != "1" {
		t.Errorf("Step = %q, want 1", s.Step)
	}
	if !reflect.DeepEqual([]string(s.Chunks), []string{"4", "7"}) {
		t.Errorf("Chunks = %v", s.Chunks)
	}
	if !reflect.DeepEqual([]string(s.Images), []string{"/data/img1.png", "/data/img2.png"}) {
		t.Errorf("Images = %v", s.Images)
	}
}

func TestDecodeContent_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		isText   bool
	}{
		{"json string", `"hello there"`, "hello there", true},
		{"invalid json", `<html>oops</html>`, "<html>oops</html>", true},
		{"array", `[1,2]`, "[1,2]", true},
		{"empty", "   ", "", true},
		{"object", `{"status":"error","message":"boom"}`, "", false},
		{"broken object", `{"status":`, `{"status":`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := DecodeContent([]byte(tc.body))
			if c.IsText() != tc.isText {
				t.Fatalf("IsText() = %v, want %v", c.IsText(), tc.isText)
			}
			if tc.isText && c.Text != tc.wantText {
				t.Errorf("Text = %q, want %q", c.Text, tc.wantText)
			}
		})
	}
}

func TestImages_Normalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"absent", `{"step":1,"instruction":"x"}`, nil},
		{"null", `{"images":null}`, nil},
		{"sentinel", `{"images":"null"}`, nil},
		{"empty string", `{"images":""}`, nil},
		{"single legacy path", `{"images":"foo/bar.jpg"}`, []string{"foo/bar.jpg"}},
		{"array", `{"images":["a.png","b.png","c.png","d.png"]}`, []string{"a.png", "b.png", "c.png", "d.png"}},
		{"array with junk", `{"images":["a.png",3,null,"null","","b.png"]}`, []string{"a.png", "b.png"}},
		{"object", `{"images":{"path":"a.png"}}`, nil},
		{"number", `{"images":5}`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var s Step
			if err := json.Unmarshal([]byte(tc.raw), &s); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual([]string(s.Images), tc.want) {
				t.Errorf("Images = %#v, want %#v", s.Images, tc.want)
			}
		})
	}
}

func TestPayload_MalformedFieldsTolerated(t *testing.T) {
	body := `{"status":42,"task_title":["x"],"steps":[
		"not a step",
		{"step":"2b","instruction":7,"chunks":"4","images":"img.png"},
		{"step":3.5,"instruction":"ok","chunks":[1,"2",true,{}]}
	]}`

	c := DecodeContent([]byte(body))
	if c.IsText() {
		t.Fatal("payload with bad fields should still decode as payload")
	}
	p := c.Payload
	if p.Status != "" || p.TaskTitle != "" {
		t.Errorf("wrong-kind fields should be absent: %+v", p)
	}
	if p.IsError() {
		t.Error("missing status must not be an error")
	}
	if len(p.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(p.Steps))
	}
	if p.Steps[0].Step != "2b" || p.Steps[0].Instruction != "" || p.Steps[0].Chunks != nil {
		t.Errorf("step 0 = %+v", p.Steps[0])
	}
	if p.Steps[1].Step != "3.5" {
		t.Errorf("Step = %q, want verbatim 3.5", p.Steps[1].Step)
	}
	if !reflect.DeepEqual([]string(p.Steps[1].Chunks), []string{"1", "2"}) {
		t.Errorf("Chunks = %v", p.Steps[1].Chunks)
	}
}

func TestPayload_RoundTripKeepsNumbers(t *testing.T) {
	in := `{"status":"success","steps":[{"step":2,"instruction":"x","chunks":[9]}]}`
	c := DecodeContent([]byte(in))

	out, err := json.Marshal(c.Payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"step":2`) || !strings.Contains(string(out), `"chunks":[9]`) {
		t.Errorf("Marshal() = %s, want numeric step and chunks", out)
	}
}

func TestIsNumeric(t *testing.T) {
	for s, want := range map[string]bool{
		"1": true, "-2": true, "3.5": true, "1e3": true,
		"": false, "NaN": false, "Inf": false, "0x10": false, "2b": false, "+1": false,
	} {
		if got := isNumeric(s); got != want {
			t.Errorf("isNumeric(%q) = %v, want %v", s, got, want)
		}
	}
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestNewStore_SeededWithWelcome(t *testing.T) {
	s := NewStore()
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	msg, _ := s.Last()
	if !msg.IsBot() || msg.Content.IsText() {
		t.Fatalf("welcome message = %+v", msg)
	}
	if got := len(msg.Content.Payload.Steps); got != 1 {
		t.Errorf("welcome steps = %d, want 1", got)
	}
	if s.Pending() {
		t.Error("new store should not be pending")
	}
}

func TestStore_AppendOrderAndIDs(t *testing.T) {
	s := NewEmptyStore()
	u := s.AppendUser("reset pump")
	b := s.AppendBotPayload(NewConnectionFailure())
	tx := s.AppendBotText("plain")

	if !(u.ID < b.ID && b.ID < tx.ID) {
		t.Errorf("IDs not increasing: %d %d %d", u.ID, b.ID, tx.ID)
	}

	msgs := s.Messages()
	roles := []Role{msgs[0].Role, msgs[1].Role, msgs[2].Role}
	if !reflect.DeepEqual(roles, []Role{RoleUser, RoleBot, RoleBot}) {
		t.Errorf("roles = %v", roles)
	}
	if msgs[1].Content.Payload.Message != ConnectionFailure {
		t.Errorf("bot message = %+v", msgs[1].Content.Payload)
	}

	// Snapshot must not alias internal state.
	msgs[0].Content.Text = "changed"
	if s.Messages()[0].Content.Text != "reset pump" {
		t.Error("Messages() returned an aliased slice")
	}
}

func TestStore_SubscribeAndVersion(t *testing.T) {
	s := NewEmptyStore()
	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })

	v0 := s.Version()
	s.AppendUser("q")
	s.SetPending(true)
	s.SetPending(true) // no change, no event
	s.AppendBotText("a")
	s.SetPending(false)

	if got := s.Version() - v0; got != 4 {
		t.Errorf("version advanced by %d, want 4", got)
	}

	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	want := []EventKind{EventAppend, EventPending, EventAppend, EventPending}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("event kinds = %v, want %v", kinds, want)
	}
	if !events[2].Pending {
		t.Error("bot append should observe pending=true")
	}

	unsubscribe()
	s.AppendUser("after")
	if len(events) != 4 {
		t.Errorf("observer called after unsubscribe")
	}
}

func TestStore_LastBot(t *testing.T) {
	s := NewEmptyStore()
	if _, ok := s.LastBot(); ok {
		t.Error("LastBot() on empty store should be false")
	}
	s.AppendBotText("first")
	s.AppendUser("question")
	msg, ok := s.LastBot()
	if !ok || msg.Content.Text != "first" {
		t.Errorf("LastBot() = %+v, %v", msg, ok)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		max  int
		want string
	}{
		{"text", Message{Content: TextContent("hello")}, 10, "hello"},
		{"truncated", Message{Content: TextContent("abcdefghijkl")}, 8, "abcde..."},
		{"error", Message{Content: PayloadContent(NewErrorPayload("boom"))}, 10, "boom"},
		{"title", Message{Content: PayloadContent(&Payload{TaskTitle: "Fix Leak"})}, 20, "Fix Leak"},
		{"first step", Message{Content: PayloadContent(&Payload{Steps: []Step{{Instruction: "do it"}}})}, 20, "do it"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.Preview(tc.max); got != tc.want {
				t.Errorf("Preview() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" || RoleBot.DisplayName() != "GuideWeave" {
		t.Error("unexpected display names")
	}
}

func TestPayloadSchema(t *testing.T) {
	data, err := json.Marshal(PayloadSchema())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{"task_title", "steps", "images", "oneOf"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("schema missing %q: %s", want, data)
		}
	}
}
