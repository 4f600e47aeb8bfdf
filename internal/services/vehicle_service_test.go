package services

import (
	"context"
	"testing"
	"time"

	"fleettrack/internal/models"
	"fleettrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Add(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVehicleRepository) GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) GetByStatus(ctx context.Context, status models.VehicleStatus) ([]*models.Vehicle, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) GetPaged(ctx context.Context, page, pageSize int) ([]*models.Vehicle, int, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Vehicle), args.Int(1), args.Error(2)
}

func (m *MockVehicleRepository) PlateExists(ctx context.Context, plate string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, plate, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) GetAll(ctx context.Context) ([]*models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *MockLocationRepository) Add(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) Update(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLocationRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocationRepository) GetByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*models.Location, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *MockLocationRepository) GetLatestByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) GetPagedByVehicleID(ctx context.Context, vehicleID uuid.UUID, page, pageSize int, startDate, endDate *time.Time) ([]*models.Location, int, error) {
	args := m.Called(ctx, vehicleID, page, pageSize, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Location), args.Int(1), args.Error(2)
}

type MockUnitOfWork struct {
	mock.Mock
	vehicles  *MockVehicleRepository
	locations *MockLocationRepository
}

func (m *MockUnitOfWork) Vehicles() repositories.VehicleRepository {
	return m.vehicles
}

func (m *MockUnitOfWork) Locations() repositories.LocationRepository {
	return m.locations
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockUnitOfWorkFactory struct {
	mock.Mock
	uow *MockUnitOfWork
}

func (m *MockUnitOfWorkFactory) Begin(ctx context.Context) (repositories.UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repositories.UnitOfWork), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockCacheService) SetVehicle(ctx context.Context, vehicle *models.Vehicle, ttl time.Duration) error {
	args := m.Called(ctx, vehicle, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCacheService) GetLatestLocation(ctx context.Context, vehicleID uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockCacheService) SetLatestLocation(ctx context.Context, location *models.Location, ttl time.Duration) error {
	args := m.Called(ctx, location, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteLatestLocation(ctx context.Context, vehicleID uuid.UUID) error {
	args := m.Called(ctx, vehicleID)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type VehicleServiceTestSuite struct {
	suite.Suite
	vehicleRepo  *MockVehicleRepository
	locationRepo *MockLocationRepository
	uow          *MockUnitOfWork
	uowFactory   *MockUnitOfWorkFactory
	cache        *MockCacheService
	service      VehicleService
	ctx          context.Context
}

func (suite *VehicleServiceTestSuite) SetupTest() {
	suite.vehicleRepo = &MockVehicleRepository{}
	suite.locationRepo = &MockLocationRepository{}
	suite.uow = &MockUnitOfWork{
		vehicles:  suite.vehicleRepo,
		locations: suite.locationRepo,
	}
	suite.uowFactory = &MockUnitOfWorkFactory{uow: suite.uow}
	suite.cache = &MockCacheService{}
	suite.service = NewVehicleService(suite.vehicleRepo, suite.locationRepo, suite.uowFactory, suite.cache)
	suite.ctx = context.Background()
}

func (suite *VehicleServiceTestSuite) TearDownTest() {
	suite.vehicleRepo.AssertExpectations(suite.T())
	suite.locationRepo.AssertExpectations(suite.T())
	suite.uowFactory.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestVehicleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VehicleServiceTestSuite))
}

func (suite *VehicleServiceTestSuite) sampleVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:        uuid.New(),
		Plate:     "ABC1D23",
		Brand:     models.BrandToyota,
		Model:     "Corolla",
		Year:      2022,
		Status:    models.StatusActive,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (suite *VehicleServiceTestSuite) expectNoLatestLocation(vehicleID uuid.UUID) {
	suite.cache.On("GetLatestLocation", suite.ctx, vehicleID).Return(nil, nil)
	suite.locationRepo.On("GetLatestByVehicleID", suite.ctx, vehicleID).Return(nil, pgx.ErrNoRows)
}

func (suite *VehicleServiceTestSuite) TestCreate_Success() {
	suite.vehicleRepo.On("PlateExists", suite.ctx, "ABC1D23", (*uuid.UUID)(nil)).Return(false, nil)
	suite.uowFactory.On("Begin", suite.ctx).Return(suite.uow, nil)
	suite.vehicleRepo.On("Add", suite.ctx, mock.AnythingOfType("*models.Vehicle")).Return(nil).Run(func(args mock.Arguments) {
		vehicle := args.Get(1).(*models.Vehicle)
		assert.Equal(suite.T(), "ABC1D23", vehicle.Plate)
		assert.Equal(suite.T(), models.StatusActive, vehicle.Status)
		assert.NotEqual(suite.T(), uuid.Nil, vehicle.ID)
		assert.False(suite.T(), vehicle.CreatedAt.IsZero())
	})
	suite.uow.On("Commit", suite.ctx).Return(nil)
	suite.uow.On("Rollback", suite.ctx).Return(nil)
	suite.cache.On("GetLatestLocation", suite.ctx, mock.AnythingOfType("uuid.UUID")).Return(nil, nil)
	suite.locationRepo.On("GetLatestByVehicleID", suite.ctx, mock.AnythingOfType("uuid.UUID")).Return(nil, pgx.ErrNoRows)

	resp, err := suite.service.Create(suite.ctx, CreateVehicleInput{
		Plate: "ABC1D23",
		Brand: models.BrandToyota,
		Model: "Corolla",
		Year:  2022,
	})
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), resp)
	assert.Equal(suite.T(), "ABC1D23", resp.Plate)
	assert.Equal(suite.T(), models.StatusActive, resp.Status)
	assert.Equal(suite.T(), "Active", resp.StatusName)
	assert.Nil(suite.T(), resp.LastLocationAt)
}

func (suite *VehicleServiceTestSuite) TestCreate_PlateAlreadyTaken() {
	suite.vehicleRepo.On("PlateExists", suite.ctx, "ABC1D23", (*uuid.UUID)(nil)).Return(true, nil)

	resp, err := suite.service.Create(suite.ctx, CreateVehicleInput{
		Plate: "ABC1D23",
		Brand: models.BrandToyota,
		Model: "Corolla",
		Year:  2022,
	})
	assert.ErrorIs(suite.T(), err, ErrPlateTaken)
	assert.Nil(suite.T(), resp)
}

func (suite *VehicleServiceTestSuite) TestCreate_DuplicateRaceMapsToPlateTaken() {
	// Pre-check passes, but a concurrent create wins and the unique index
	// rejects the insert.
	suite.vehicleRepo.On("PlateExists", suite.ctx, "ABC1D23", (*uuid.UUID)(nil)).Return(false, nil)
	suite.uowFactory.On("Begin", suite.ctx).Return(suite.uow, nil)
	suite.vehicleRepo.On("Add", suite.ctx, mock.AnythingOfType("*models.Vehicle")).Return(repositories.ErrDuplicatePlate)
	suite.uow.On("Rollback", suite.ctx).Return(nil)

	resp, err := suite.service.Create(suite.ctx, CreateVehicleInput{
		Plate: "ABC1D23",
		Brand: models.BrandToyota,
		Model: "Corolla",
		Year:  2022,
	})
	assert.ErrorIs(suite.T(), err, ErrPlateTaken)
	assert.Nil(suite.T(), resp)
}

func (suite *VehicleServiceTestSuite) TestGetByID_CacheHitSkipsRepository() {
	vehicle := suite.sampleVehicle()

	suite.cache.On("GetVehicle", suite.ctx, vehicle.ID).Return(vehicle, nil)
	suite.expectNoLatestLocation(vehicle.ID)

	resp, err := suite.service.GetByID(suite.ctx, vehicle.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), vehicle.ID, resp.ID)
	suite.vehicleRepo.AssertNotCalled(suite.T(), "GetByID", suite.ctx, vehicle.ID)
}

func (suite *VehicleServiceTestSuite) TestGetByID_CacheMissFallsThrough() {
	vehicle := suite.sampleVehicle()
	latest := &models.Location{
		ID:         uuid.New(),
		VehicleID:  vehicle.ID,
		Latitude:   -23.55,
		Longitude:  -46.63,
		RecordedAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
	}

	suite.cache.On("GetVehicle", suite.ctx, vehicle.ID).Return(nil, nil)
	suite.vehicleRepo.On("GetByID", suite.ctx, vehicle.ID).Return(vehicle, nil)
	suite.cache.On("SetVehicle", suite.ctx, vehicle, mock.AnythingOfType("time.Duration")).Return(nil)
	suite.cache.On("GetLatestLocation", suite.ctx, vehicle.ID).Return(nil, nil)
	suite.locationRepo.On("GetLatestByVehicleID", suite.ctx, vehicle.ID).Return(latest, nil)
	suite.cache.On("SetLatestLocation", suite.ctx, latest, mock.AnythingOfType("time.Duration")).Return(nil)

	resp, err := suite.service.GetByID(suite.ctx, vehicle.ID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), resp.LastLocationAt)
	assert.Equal(suite.T(), latest.RecordedAt, *resp.LastLocationAt)
}

func (suite *VehicleServiceTestSuite) TestGetByID_NotFound() {
	id := uuid.New()

	suite.cache.On("GetVehicle", suite.ctx, id).Return(nil, nil)
	suite.vehicleRepo.On("GetByID", suite.ctx, id).Return(nil, pgx.ErrNoRows)

	resp, err := suite.service.GetByID(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, ErrVehicleNotFound)
	assert.Nil(suite.T(), resp)
}

func (suite *VehicleServiceTestSuite) TestGetPaged_MapsAllItems() {
	v1 := suite.sampleVehicle()
	v2 := suite.sampleVehicle()
	v2.Plate = "XYZ9Z99"

	suite.vehicleRepo.On("GetPaged", suite.ctx, 1, 10).Return([]*models.Vehicle{v1, v2}, 12, nil)
	suite.expectNoLatestLocation(v1.ID)
	suite.expectNoLatestLocation(v2.ID)

	page, err := suite.service.GetPaged(suite.ctx, 1, 10)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12, page.TotalCount)
	assert.Equal(suite.T(), 1, page.Page)
	assert.Equal(suite.T(), 10, page.PageSize)
	assert.Len(suite.T(), page.Items, 2)
	assert.Equal(suite.T(), "XYZ9Z99", page.Items[1].Plate)
}

func (suite *VehicleServiceTestSuite) TestUpdateStatus_Success() {
	vehicle := suite.sampleVehicle()

	suite.vehicleRepo.On("GetByID", suite.ctx, vehicle.ID).Return(vehicle, nil)
	suite.uowFactory.On("Begin", suite.ctx).Return(suite.uow, nil)
	suite.vehicleRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Vehicle")).Return(nil).Run(func(args mock.Arguments) {
		updated := args.Get(1).(*models.Vehicle)
		assert.Equal(suite.T(), models.StatusStolen, updated.Status)
		assert.NotNil(suite.T(), updated.UpdatedAt)
	})
	suite.uow.On("Commit", suite.ctx).Return(nil)
	suite.uow.On("Rollback", suite.ctx).Return(nil)
	suite.cache.On("DeleteVehicle", suite.ctx, vehicle.ID).Return(nil)
	suite.expectNoLatestLocation(vehicle.ID)

	resp, err := suite.service.UpdateStatus(suite.ctx, vehicle.ID, models.StatusStolen)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusStolen, resp.Status)
	assert.Equal(suite.T(), "Stolen", resp.StatusName)
}

func (suite *VehicleServiceTestSuite) TestUpdateStatus_NotFound() {
	id := uuid.New()

	suite.vehicleRepo.On("GetByID", suite.ctx, id).Return(nil, pgx.ErrNoRows)

	resp, err := suite.service.UpdateStatus(suite.ctx, id, models.StatusMaintenance)
	assert.ErrorIs(suite.T(), err, ErrVehicleNotFound)
	assert.Nil(suite.T(), resp)
}

func (suite *VehicleServiceTestSuite) TestDelete_Success() {
	id := uuid.New()

	suite.vehicleRepo.On("Exists", suite.ctx, id).Return(true, nil)
	suite.uowFactory.On("Begin", suite.ctx).Return(suite.uow, nil)
	suite.vehicleRepo.On("Delete", suite.ctx, id).Return(nil)
	suite.uow.On("Commit", suite.ctx).Return(nil)
	suite.uow.On("Rollback", suite.ctx).Return(nil)
	suite.cache.On("DeleteVehicle", suite.ctx, id).Return(nil)
	suite.cache.On("DeleteLatestLocation", suite.ctx, id).Return(nil)

	err := suite.service.Delete(suite.ctx, id)
	assert.NoError(suite.T(), err)
}

func (suite *VehicleServiceTestSuite) TestDelete_NotFound() {
	id := uuid.New()

	suite.vehicleRepo.On("Exists", suite.ctx, id).Return(false, nil)

	err := suite.service.Delete(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, ErrVehicleNotFound)
}

func (suite *VehicleServiceTestSuite) TestGetByStatus_Success() {
	stolen := suite.sampleVehicle()
	stolen.Status = models.StatusStolen

	suite.vehicleRepo.On("GetByStatus", suite.ctx, models.StatusStolen).Return([]*models.Vehicle{stolen}, nil)
	suite.expectNoLatestLocation(stolen.ID)

	vehicles, err := suite.service.GetByStatus(suite.ctx, models.StatusStolen)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), vehicles, 1)
	assert.Equal(suite.T(), "Stolen", vehicles[0].StatusName)
}
