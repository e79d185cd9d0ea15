package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewRoom(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		roomName string
		capacity int
		wantErr  string
	}{
		{name: "valid", id: "A101", roomName: "Lecture Hall", capacity: 30},
		{name: "blank id", id: " ", roomName: "Lecture Hall", capacity: 30, wantErr: "room id is null or empty"},
		{name: "blank name", id: "A101", roomName: "", capacity: 30, wantErr: "room name is null or empty"},
		{name: "zero capacity", id: "A101", roomName: "Lecture Hall", capacity: 0, wantErr: "room capacity must be positive integer"},
		{name: "negative capacity", id: "A101", roomName: "Lecture Hall", capacity: -5, wantErr: "room capacity must be positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := NewRoom(tt.id, tt.roomName, tt.capacity)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if room.ID != tt.id || room.Capacity != tt.capacity {
					t.Fatalf("unexpected room: %+v", room)
				}
				return
			}
			if !IsInvalidArgument(err) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRoom_IsZero(t *testing.T) {
	if !(Room{}).IsZero() {
		t.Fatal("empty room must be zero")
	}
	if (Room{ID: "A101"}).IsZero() {
		t.Fatal("room with id must not be zero")
	}
}

func TestNewStudent(t *testing.T) {
	if _, err := NewStudent("S1", "Ada", "Lovelace"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string][3]string{
		"student id is required": {"", "Ada", "Lovelace"},
		"first name is required": {"S1", " ", "Lovelace"},
		"last name is required":  {"S1", "Ada", ""},
	}
	for want, args := range cases {
		_, err := NewStudent(args[0], args[1], args[2])
		if !IsInvalidArgument(err) || !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q, got %v", want, err)
		}
	}

	if got := (Student{FirstName: "Ada", LastName: "Lovelace"}).FullName(); got != "Ada Lovelace" {
		t.Fatalf("unexpected full name %q", got)
	}
}

func TestClockFunc(t *testing.T) {
	fixed := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	var clock Clock = ClockFunc(func() time.Time { return fixed })
	if !clock.Now().Equal(fixed) {
		t.Fatalf("expected %s, got %s", fixed, clock.Now())
	}
	if (SystemClock{}).Now().Location() != time.UTC {
		t.Fatal("system clock must return UTC")
	}
}
