package snapshot

import (
	"bytes"
	"os"

	json "github.com/goccy/go-json"

	"fms/internal/models"
	"fms/internal/providers"
	"fms/internal/snapshot/interfaces"
)

// zstdMagic is the zstd frame header; files without it are treated as raw
// JSON so documents written before compression was introduced still load.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// BackupPath is the crash-safety copy written before every overwrite.
func BackupPath(fileName string) string {
	return fileName + ".bak"
}

type FileManager struct {
	store      *models.DocumentStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store *models.DocumentStore, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

// SaveToFile persists the document: the current file is copied to the backup
// path first, then the new content is written to a temp file, synced, and
// renamed over the original. A failure at any step leaves the previous file
// (and its backup) intact.
func (f *FileManager) SaveToFile(fileName string) error {
	doc := f.store.Export()

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if current, err := os.ReadFile(fileName); err == nil {
		if err := os.WriteFile(BackupPath(fileName), current, 0644); err != nil {
			f.logger.Warnf(providers.TypeApp, "Backup write failed (continuing): %s", err)
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the document from the primary file, falling back to
// the backup when the primary is missing or unreadable. When both are gone
// the service starts from an empty document; that data loss is accepted and
// logged for the operator.
func (f *FileManager) LoadFromFile(fileName string) error {
	doc, err := f.readDocument(fileName)
	if err == nil {
		f.store.Put(doc)
		return nil
	}
	if !os.IsNotExist(err) {
		f.logger.Warnf(providers.TypeApp, "Primary document unreadable (%s), trying backup", err)
	}

	doc, bakErr := f.readDocument(BackupPath(fileName))
	if bakErr == nil {
		f.logger.Warnf(providers.TypeApp, "Recovered document from backup")
		f.store.Put(doc)
		return nil
	}

	if os.IsNotExist(err) && os.IsNotExist(bakErr) {
		return nil
	}
	f.logger.Errorf(providers.TypeApp, "Document and backup both unreadable, starting empty: %s / %s", err, bakErr)
	f.store.Put(nil)
	return nil
}

func (f *FileManager) readDocument(fileName string) (models.Document, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, zstdMagic) {
		data, err = f.compressor.Decompress(data)
		if err != nil {
			return nil, err
		}
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
