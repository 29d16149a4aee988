package input

import (
	"fmt"

	"lifestuff/internal/domain"
	"lifestuff/internal/util/memzero"
)

// Buffer is one editable secret. The zero value has never been created.
type Buffer struct {
	runes     []rune
	created   bool
	finalised bool
}

// Insert adds text at the rune position pos. Inserting into a finalised buffer
// discards the frozen contents and starts a new entry.
func (b *Buffer) Insert(pos int, text string) error {
	if b.finalised {
		b.wipe()
		b.finalised = false
	}
	if pos < 0 || pos > len(b.runes) {
		return fmt.Errorf("insert at %d of %d: %w", pos, len(b.runes), domain.ErrInvalidParameter)
	}
	ins := []rune(text)
	out := make([]rune, 0, len(b.runes)+len(ins))
	out = append(out, b.runes[:pos]...)
	out = append(out, ins...)
	out = append(out, b.runes[pos:]...)
	b.wipe()
	b.runes = out
	b.created = true
	return nil
}

// Remove deletes n runes starting at pos.
func (b *Buffer) Remove(pos, n int) error {
	if !b.created {
		return domain.ErrUninitialised
	}
	if b.finalised {
		return fmt.Errorf("remove from finalised buffer: %w", domain.ErrInvalidParameter)
	}
	if pos < 0 || n < 0 || pos+n > len(b.runes) {
		return fmt.Errorf("remove %d at %d of %d: %w", n, pos, len(b.runes), domain.ErrInvalidParameter)
	}
	old := len(b.runes)
	b.runes = append(b.runes[:pos], b.runes[pos+n:]...)
	clear(b.runes[len(b.runes):old])
	return nil
}

// Clear empties the buffer and unfreezes it.
func (b *Buffer) Clear() error {
	if !b.created {
		return domain.ErrUninitialised
	}
	b.wipe()
	b.finalised = false
	return nil
}

// Finalise freezes the buffer. Calling it again is a no-op.
func (b *Buffer) Finalise() { b.finalised = true }

// Created reports whether anything was ever inserted.
func (b *Buffer) Created() bool { return b.created }

// Finalised reports whether the buffer is frozen.
func (b *Buffer) Finalised() bool { return b.finalised }

// String returns the current contents.
func (b *Buffer) String() string { return string(b.runes) }

func (b *Buffer) wipe() {
	memzero.Runes(b.runes)
	b.runes = b.runes[:0]
}
