package adapters

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
)

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeviceExists       = errors.New("device with this serial number already exists")
)

// MemoryDeviceRepository keeps the devices allowed to open a readback connection.
// Nothing is persisted; the set is seeded from configuration at startup.
type MemoryDeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]*entities.Device // id -> device
	serials map[string]*entities.Device // serial_number -> device
	secrets map[string]string           // serial_number -> secret
}

// Ensure MemoryDeviceRepository implements the DeviceRepository interface
var _ repositories.DeviceRepository = (*MemoryDeviceRepository)(nil)

// NewMemoryDeviceRepository creates a new in-memory device repository
func NewMemoryDeviceRepository() *MemoryDeviceRepository {
	return &MemoryDeviceRepository{
		devices: make(map[string]*entities.Device),
		serials: make(map[string]*entities.Device),
		secrets: make(map[string]string),
	}
}

// NewSeededDeviceRepository creates a repository holding one device per serial/secret pair
func NewSeededDeviceRepository(ctx context.Context, credentials map[string]string) (*MemoryDeviceRepository, error) {
	repo := NewMemoryDeviceRepository()
	for serial, secret := range credentials {
		if err := repo.Create(ctx, &entities.Device{SerialNumber: serial}, secret); err != nil {
			return nil, fmt.Errorf("failed to seed device %s: %w", serial, err)
		}
	}
	return repo, nil
}

// Create registers device with its secret. A missing ID is generated.
func (m *MemoryDeviceRepository) Create(ctx context.Context, device *entities.Device, secret string) error {
	if device == nil {
		return errors.New("device cannot be nil")
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if device.ID == "" {
		device.ID = uuid.New().String()
	}
	if err := device.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.serials[device.SerialNumber]; exists {
		return ErrDeviceExists
	}

	device.CreatedAt = time.Now()

	deviceCopy := *device
	m.devices[device.ID] = &deviceCopy
	m.serials[device.SerialNumber] = &deviceCopy
	m.secrets[device.SerialNumber] = secret
	return nil
}

// GetByID implements DeviceRepository interface
func (m *MemoryDeviceRepository) GetByID(ctx context.Context, id string) (*entities.Device, error) {
	if id == "" {
		return nil, errors.New("device ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	device, exists := m.devices[id]
	if !exists {
		return nil, ErrDeviceNotFound
	}

	deviceCopy := *device
	return &deviceCopy, nil
}

// GetBySerialNumber implements DeviceRepository interface
func (m *MemoryDeviceRepository) GetBySerialNumber(ctx context.Context, serialNumber string) (*entities.Device, error) {
	if serialNumber == "" {
		return nil, errors.New("serial number cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	device, exists := m.serials[serialNumber]
	if !exists {
		return nil, ErrDeviceNotFound
	}

	deviceCopy := *device
	return &deviceCopy, nil
}

// ValidateDevice checks a serial number and secret pair
func (m *MemoryDeviceRepository) ValidateDevice(serialNumber, secret string) (*entities.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	storedSecret, exists := m.secrets[serialNumber]
	if !exists {
		return nil, ErrDeviceNotFound
	}
	if subtle.ConstantTimeCompare([]byte(storedSecret), []byte(secret)) != 1 {
		return nil, ErrInvalidCredentials
	}

	deviceCopy := *m.serials[serialNumber]
	return &deviceCopy, nil
}
