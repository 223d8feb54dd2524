package domain

import "testing"

func TestNewProjectSeedsDefaultBoard(t *testing.T) {
	p := NewProject("Roadmap", "Q3 work")
	if p.Title != "Roadmap" || p.Description != "Q3 work" {
		t.Fatalf("unexpected project: %#v", p)
	}
	if p.ID.IsZero() {
		t.Fatal("expected project id to be assigned")
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected creation time to be stamped")
	}
	if len(p.Boards) != 1 {
		t.Fatalf("expected 1 seeded board, got %d", len(p.Boards))
	}
	board := p.Boards[0]
	if board.Title != "Default board" {
		t.Fatalf("unexpected board title: %q", board.Title)
	}
	if board.ProjectID != p.ID {
		t.Fatal("board not linked to project")
	}
	if len(board.Lanes) != len(DefaultLaneTitles) {
		t.Fatalf("expected %d lanes, got %d", len(DefaultLaneTitles), len(board.Lanes))
	}
	for i, want := range DefaultLaneTitles {
		if board.Lanes[i].Title != want {
			t.Fatalf("lane %d: expected %q got %q", i, want, board.Lanes[i].Title)
		}
		if board.Lanes[i].BoardID != board.ID {
			t.Fatalf("lane %d not linked to board", i)
		}
	}
}

func TestNewProjectRecordsCreatedEvent(t *testing.T) {
	p := NewProject("Roadmap", "")
	events := p.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	created, ok := events[0].(ProjectCreated)
	if !ok {
		t.Fatalf("unexpected event type %T", events[0])
	}
	if created.Project != p {
		t.Fatal("event does not reference the created project")
	}
	if created.EventName() != EventProjectCreated {
		t.Fatalf("unexpected event name: %q", created.EventName())
	}

	p.ClearEvents()
	if len(p.Events()) != 0 {
		t.Fatal("expected events to be cleared")
	}
}

func TestProjectUpdateKeepsIdentity(t *testing.T) {
	p := NewProject("Roadmap", "old")
	id, createdAt := p.ID, p.CreatedAt

	p.Update("Renamed", "new")
	if p.Title != "Renamed" || p.Description != "new" {
		t.Fatalf("update not applied: %#v", p)
	}
	if p.ID != id || !p.CreatedAt.Equal(createdAt) {
		t.Fatal("identity changed by update")
	}
}

func TestAddBoardBackfillsOwnership(t *testing.T) {
	u := NewUser("gopher", "hash")
	p := u.Projects[0]
	b := NewBoard("Sprint 12")
	b.AddLane(NewLane("Review"))

	p.AddBoard(b)
	if b.ProjectID != p.ID {
		t.Fatal("board not linked to project")
	}
	if b.UserID != u.ID {
		t.Fatal("board ownership not stamped")
	}
	if b.Lanes[0].UserID != u.ID {
		t.Fatal("lane ownership not stamped transitively")
	}
}
