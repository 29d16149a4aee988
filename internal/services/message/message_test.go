package message_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"lifestuff/internal/domain"
	"lifestuff/internal/network"
	"lifestuff/internal/services/message"
)

func TestShareFields_Shapes(t *testing.T) {
	admin := message.Share{
		Tag: message.InsertShare, ShareID: "s", DirectoryID: "d", Filename: "f",
		Identity: "i", ValidationToken: "v", PublicKey: "pub", DecryptKey: "dec", PrivateKey: "priv",
	}
	want := []string{"insert_share", "s", "d", "f", "i", "v", "pub", "dec", "priv"}
	if got := admin.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("admin insert fields = %v", got)
	}

	member := admin
	member.Tag, member.PrivateKey = message.UpdateShare, ""
	if got := member.Fields(); len(got) != 7 {
		t.Fatalf("member update has %d fields, want 7", len(got))
	}

	remove := message.Share{Tag: message.RemoveShare, ShareID: "s", DirectoryID: "d", Identity: "ignored"}
	if got := remove.Fields(); !reflect.DeepEqual(got, []string{"remove_share", "s", "d"}) {
		t.Fatalf("remove fields = %v", got)
	}

	for _, m := range []message.Share{admin, member, remove} {
		back, err := message.ParseShare(m.Fields())
		if err != nil {
			t.Fatalf("parse %s: %v", m.Tag, err)
		}
		if back.Admin() != m.Admin() || back.DirectoryID != "d" {
			t.Fatalf("parse %s lost data: %+v", m.Tag, back)
		}
	}
}

func TestParseShare_Rejects(t *testing.T) {
	if _, err := message.ParseShare([]string{"rename_share", "s", "d"}); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("unknown tag: want ErrUnknownField, got %v", err)
	}
	if _, err := message.ParseShare([]string{"update_share", "s", "d", "i"}); !errors.Is(err, domain.ErrMalformedPacket) {
		t.Fatalf("short: want ErrMalformedPacket, got %v", err)
	}
	if _, err := message.ParseShare([]string{"leave_share", "s", "d", "x"}); !errors.Is(err, domain.ErrMalformedPacket) {
		t.Fatalf("long leave: want ErrMalformedPacket, got %v", err)
	}
}

func TestReceive_AcksOnlyHandled(t *testing.T) {
	ctx := context.Background()
	m := network.NewMemoryMessenger()
	svc := message.New(m)

	for _, dir := range []string{"a", "b", "c"} {
		if err := svc.Send(ctx, "owner", "bob", message.Share{Tag: message.RemoveShare, ShareID: "s", DirectoryID: dir}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	var seen []string
	n, err := svc.Receive(ctx, "bob", 0, func(_ context.Context, _ domain.PublicID, s message.Share) error {
		if s.DirectoryID == "b" {
			return errors.New("busy")
		}
		seen = append(seen, s.DirectoryID)
		return nil
	})
	if err == nil || n != 1 || len(seen) != 1 {
		t.Fatalf("first pass: n=%d seen=%v err=%v", n, seen, err)
	}

	n, err = svc.Receive(ctx, "bob", 0, func(_ context.Context, _ domain.PublicID, s message.Share) error {
		seen = append(seen, s.DirectoryID)
		return nil
	})
	if err != nil || n != 2 {
		t.Fatalf("second pass: n=%d err=%v", n, err)
	}
	if !reflect.DeepEqual(seen, []string{"a", "b", "c"}) {
		t.Fatalf("seen = %v", seen)
	}
}
