// internal/services/report_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

func newReportServiceForTest(t *testing.T) (*ReportService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewReportService(db, nil, NewAuditService(db)), db
}

func mustDateValue(value string) time.Time {
	parsed, _ := time.Parse("2006-01-02", value)
	return parsed
}

func reportRequest(source models.CommoditySource, commodityID uuid.UUID) *CreateReportRequest {
	return &CreateReportRequest{
		MarketName:      "Pasar Minggu",
		Location:        "Jakarta Selatan",
		CommoditySource: source,
		CommodityID:     commodityID,
		Price:           decimal.NewFromInt(15500),
		ReportDate:      mustDateValue("2026-08-20"),
	}
}

func TestCreateReportNationalCommodity(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	require.NotNil(t, report.NationalCommodityID)
	assert.Equal(t, beras.ID, *report.NationalCommodityID)
	assert.Nil(t, report.CustomCommodityID)
}

func TestCreateReportCustomCommodity(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	custom := &models.CustomCommodity{Name: "Gabah Kering", Unit: "Rp./Kg", CreatedBy: reporter.ID}
	require.NoError(t, db.Create(custom).Error)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceCustom, custom.ID))
	require.NoError(t, err)
	require.NotNil(t, report.CustomCommodityID)
	assert.Equal(t, custom.ID, *report.CustomCommodityID)
	assert.Nil(t, report.NationalCommodityID)
}

func TestCreateReportValidation(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	_, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, uuid.New()))
	assert.ErrorIs(t, err, ErrCommodityNotFound)

	_, err = svc.Create(reporter.ID, reportRequest(models.CommoditySourceCustom, beras.ID))
	assert.ErrorIs(t, err, ErrCommodityNotFound, "registries never mix")

	req := reportRequest(models.CommoditySourceNational, beras.ID)
	req.Price = decimal.NewFromInt(-100)
	_, err = svc.Create(reporter.ID, req)
	assert.ErrorIs(t, err, ErrValidationFailed)

	req = reportRequest("invalid", beras.ID)
	_, err = svc.Create(reporter.ID, req)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateReportOwnership(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	stranger := createTestUser(t, db, "tetangga", models.UserRoleUser)
	admin := createTestUser(t, db, "boss", models.UserRoleAdmin)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(15900)
	_, err = svc.Update(report.ID, stranger, &UpdateReportRequest{Price: &newPrice})
	assert.Error(t, err)

	_, err = svc.Update(report.ID, reporter, &UpdateReportRequest{Price: &newPrice, Notes: "revisi"})
	require.NoError(t, err)

	var refreshed models.MarketPriceReport
	require.NoError(t, db.First(&refreshed, "id = ?", report.ID).Error)
	assert.True(t, refreshed.Price.Equal(newPrice))
	assert.Equal(t, "revisi", refreshed.Notes)

	_, err = svc.Update(report.ID, admin, &UpdateReportRequest{MarketName: "Pasar Senen"})
	require.NoError(t, err)
}

func TestVerifyReport(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	officer := createTestUser(t, db, "petugas", models.UserRoleOfficer)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)

	verified, err := svc.Verify(report.ID, officer, true, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusVerified, verified.Status)

	// A settled report cannot be re-verified.
	_, err = svc.Verify(report.ID, officer, false, RequestMeta{})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestVerifyReportReject(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	officer := createTestUser(t, db, "petugas", models.UserRoleOfficer)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)

	rejected, err := svc.Verify(report.ID, officer, false, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRejected, rejected.Status)
}

func TestReportImages(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)

	// First image becomes the primary, later ones append.
	withPrimary, err := svc.AddImage(report.ID, reporter, "report_images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "report_images/a.jpg", withPrimary.PrimaryImage)
	assert.Empty(t, withPrimary.Images)

	withExtra, err := svc.AddImage(report.ID, reporter, "report_images/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "report_images/a.jpg", withExtra.PrimaryImage)
	require.Len(t, withExtra.Images, 1)
	assert.Equal(t, "report_images/b.jpg", withExtra.Images[0])

	afterRemove, err := svc.RemoveImage(report.ID, reporter, "report_images/b.jpg")
	require.NoError(t, err)
	assert.Empty(t, afterRemove.Images)

	_, err = svc.RemoveImage(report.ID, reporter, "report_images/missing.jpg")
	assert.Error(t, err)
}

func TestDeleteReport(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	stranger := createTestUser(t, db, "tetangga", models.UserRoleUser)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	report, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)

	err = svc.Delete(report.ID, stranger, RequestMeta{})
	assert.Error(t, err)

	require.NoError(t, svc.Delete(report.ID, reporter, RequestMeta{}))

	var count int64
	db.Model(&models.MarketPriceReport{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestListReportsFilters(t *testing.T) {
	svc, db := newReportServiceForTest(t)
	reporter := createTestUser(t, db, "warga", models.UserRoleUser)
	other := createTestUser(t, db, "tetangga", models.UserRoleUser)
	officer := createTestUser(t, db, "petugas", models.UserRoleOfficer)
	beras := createTestCommodity(t, db, "Beras Premium", 27)

	first, err := svc.Create(reporter.ID, reportRequest(models.CommoditySourceNational, beras.ID))
	require.NoError(t, err)

	second := reportRequest(models.CommoditySourceNational, beras.ID)
	second.MarketName = "Pasar Senen"
	_, err = svc.Create(other.ID, second)
	require.NoError(t, err)

	_, err = svc.Verify(first.ID, officer, true, RequestMeta{})
	require.NoError(t, err)

	page := utils.PaginationParams{Page: 1, Limit: 20}

	verified := models.ReportStatusVerified
	items, total, err := svc.List(ReportListParams{PaginationParams: page, Status: &verified})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)

	items, total, err = svc.List(ReportListParams{PaginationParams: page, ReporterID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Pasar Senen", items[0].MarketName)

	items, total, err = svc.List(ReportListParams{PaginationParams: page, MarketName: "senen"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Pasar Senen", items[0].MarketName)
}
