package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"lifestuff/internal/domain"
	"lifestuff/internal/network"
)

const dbTimeout = time.Second

var (
	// packetsBucket maps a 64-byte name to a JSON SignedData.
	packetsBucket = []byte("packets")

	// messagesBucket holds one nested bucket per recipient, keyed by a
	// big-endian sequence number so a cursor walks them oldest first.
	messagesBucket = []byte("messages")
)

// Bolt is a domain.RelayClient persisted in a bolt database.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database at path.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: dbTimeout})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{packetsBucket, messagesBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debugf("opened %s", path)
	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (s *Bolt) Close() error { return s.db.Close() }

func loadPacket(b *bolt.Bucket, name domain.Identifier) (*domain.SignedData, error) {
	v := b.Get(name[:])
	if v == nil {
		return nil, nil
	}
	var p domain.SignedData
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, fmt.Errorf("packet %s: %w", name.Short(), domain.ErrMalformedPacket)
	}
	return &p, nil
}

func (s *Bolt) Put(ctx context.Context, name domain.Identifier, p domain.SignedData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(packetsBucket)
		existing, err := loadPacket(b, name)
		if err != nil {
			return err
		}
		if err := network.CheckPut(existing, p); err != nil {
			log.Debugf("put %s rejected: %v", name.Short(), err)
			return err
		}
		return b.Put(name[:], v)
	})
}

func (s *Bolt) Get(ctx context.Context, name domain.Identifier) (domain.SignedData, error) {
	if err := ctx.Err(); err != nil {
		return domain.SignedData{}, err
	}
	var p *domain.SignedData
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		p, err = loadPacket(tx.Bucket(packetsBucket), name)
		return err
	})
	if err != nil {
		return domain.SignedData{}, err
	}
	if p == nil {
		return domain.SignedData{}, domain.ErrNotFound
	}
	return *p, nil
}

func (s *Bolt) Delete(ctx context.Context, name domain.Identifier, proof domain.OwnershipProof) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(packetsBucket)
		existing, err := loadPacket(b, name)
		if err != nil {
			return err
		}
		if err := network.CheckDelete(existing, name, proof); err != nil {
			return err
		}
		return b.Delete(name[:])
	})
}

func (s *Bolt) KeyUnique(ctx context.Context, name domain.Identifier) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	unique := true
	err := s.db.View(func(tx *bolt.Tx) error {
		unique = tx.Bucket(packetsBucket).Get(name[:]) == nil
		return nil
	})
	return unique, err
}

// Send appends msg to the recipient's queue.
func (s *Bolt) Send(ctx context.Context, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("send: empty recipient: %w", domain.ErrInvalidParameter)
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMicro()
	}
	v, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		q, err := tx.Bucket(messagesBucket).CreateBucketIfNotExists([]byte(msg.To))
		if err != nil {
			return err
		}
		seq, err := q.NextSequence()
		if err != nil {
			return err
		}
		var k [8]byte
		binary.BigEndian.PutUint64(k[:], seq)
		return q.Put(k[:], v)
	})
}

// Fetch returns up to limit queued messages for me, oldest first, without
// removing them. limit <= 0 returns the whole queue.
func (s *Bolt) Fetch(ctx context.Context, me domain.PublicID, limit int) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Message
	err := s.db.View(func(tx *bolt.Tx) error {
		q := tx.Bucket(messagesBucket).Bucket([]byte(me))
		if q == nil {
			return nil
		}
		c := q.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) == limit {
				break
			}
			var m domain.Message
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("message %x: %w", k, domain.ErrMalformedPacket)
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}

// Ack drops the first count messages of me's queue.
func (s *Bolt) Ack(ctx context.Context, me domain.PublicID, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if count <= 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		q := tx.Bucket(messagesBucket).Bucket([]byte(me))
		if q == nil {
			return nil
		}
		var keys [][]byte
		c := q.Cursor()
		for k, _ := c.First(); k != nil && len(keys) < count; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := q.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats reports the number of stored packets and queued messages.
func (s *Bolt) Stats() (packets, messages int, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		packets = tx.Bucket(packetsBucket).Stats().KeyN
		return tx.Bucket(messagesBucket).ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			messages += tx.Bucket(messagesBucket).Bucket(k).Stats().KeyN
			return nil
		})
	})
	return packets, messages, err
}

var _ domain.RelayClient = (*Bolt)(nil)
