package persistence

import (
	"encoding/binary"
	"time"

	"go.etcd.io/bbolt"
)

var processedBucket = []byte("processed_messages")

// Cuánto tiempo se recuerdan los IDs de mensajes ya procesados
const processedTTL = 7 * 24 * time.Hour

// PersistenceManager guarda en disco los IDs de mensajes ya procesados,
// para no duplicar recordatorios cuando WhatsApp reentrega eventos
// después de un reinicio.
type PersistenceManager struct {
	db *bbolt.DB
}

func NewPersistenceManager(path string) (*PersistenceManager, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(processedBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PersistenceManager{db: db}, nil
}

// WasProcessed indica si un mensaje ya fue procesado
func (pm *PersistenceManager) WasProcessed(messageID string) bool {
	var found bool
	pm.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(processedBucket).Get([]byte(messageID)) != nil
		return nil
	})
	return found
}

// MarkProcessed registra un mensaje como procesado
func (pm *PersistenceManager) MarkProcessed(messageID string) error {
	return pm.db.Update(func(tx *bbolt.Tx) error {
		ts := make([]byte, 8)
		binary.BigEndian.PutUint64(ts, uint64(time.Now().Unix()))
		return tx.Bucket(processedBucket).Put([]byte(messageID), ts)
	})
}

// Sweep borra los IDs más viejos que el TTL. Conviene llamarlo cada tanto
// para que el archivo no crezca sin límite.
func (pm *PersistenceManager) Sweep() (int, error) {
	cutoff := uint64(time.Now().Add(-processedTTL).Unix())
	removed := 0

	err := pm.db.Update(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(processedBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if len(v) == 8 && binary.BigEndian.Uint64(v) < cutoff {
				// Borrar vía el cursor es la única forma segura durante la iteración
				if err := cursor.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// StartSweeper arranca la limpieza periódica en segundo plano
func (pm *PersistenceManager) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				pm.Sweep()
			}
		}
	}()
}

func (pm *PersistenceManager) Close() error {
	return pm.db.Close()
}
