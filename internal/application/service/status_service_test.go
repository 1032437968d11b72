package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provalon/quality-engine/internal/domain/entity"
	"github.com/provalon/quality-engine/internal/domain/qerrors"
	"github.com/provalon/quality-engine/internal/domain/status"
	"github.com/provalon/quality-engine/internal/domain/transition"
)

type statusFixture struct {
	svc        StatusService
	statusRepo *mockStatusRepo
	history    *mockHistoryRepo
	inspection *mockInspectionRepo
	users      *mockUserRepo
}

func newStatusFixture(inspExists bool) *statusFixture {
	f := &statusFixture{
		statusRepo: newMockStatusRepo(),
		history:    &mockHistoryRepo{},
		inspection: &mockInspectionRepo{exists: inspExists},
		users: &mockUserRepo{users: map[string]*entity.User{
			"inspector": {ID: "inspector", FullName: "Ida Inspector", Role: status.RoleQAInspector},
			"manager":   {ID: "manager", FullName: "Mona Manager", Role: status.RoleQAManager},
		}},
	}
	f.svc = NewStatusService(f.statusRepo, f.history, f.inspection, f.users, &mockTxManager{}, &mockLogger{})
	return f
}

func TestStatusService_ListStatusTypes(t *testing.T) {
	f := newStatusFixture(true)

	types := f.svc.ListStatusTypes()
	require.Len(t, types, 7)
	assert.Equal(t, status.StatusPending, types[0].Code)
	assert.Equal(t, status.StatusCondApproved, types[6].Code)
}

func TestStatusService_ValidTransitionsFrom(t *testing.T) {
	f := newStatusFixture(true)

	rules := f.svc.ValidTransitionsFrom(status.StatusPending)
	assert.Len(t, rules, 4)
}

func TestStatusService_ValidTransitionsFrom_UnknownStatusYieldsEmptyList(t *testing.T) {
	f := newStatusFixture(true)

	rules := f.svc.ValidTransitionsFrom(status.QualityStatus("BOGUS"))
	require.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestStatusService_Validate_InvalidTransition(t *testing.T) {
	f := newStatusFixture(true)

	result, err := f.svc.Validate(context.Background(), ValidateRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "lp-1",
		FromStatus: status.StatusFailed,
		ToStatus:   status.StatusReleased,
		Reason:     "attempting invalid transition",
		ActorID:    "manager",
	})
	require.NoError(t, err)
	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Invalid status transition: FAILED -> RELEASED")
}

func TestStatusService_Validate_RejectsUnknownEntityType(t *testing.T) {
	f := newStatusFixture(true)

	result, err := f.svc.Validate(context.Background(), ValidateRequest{
		OrgID:      "org-1",
		EntityType: status.EntityType("pallet"),
		EntityID:   "p-1",
		FromStatus: status.StatusPending,
		ToStatus:   status.StatusHold,
		Reason:     "some reason",
		ActorID:    "inspector",
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestStatusService_ChangeStatus_Success(t *testing.T) {
	f := newStatusFixture(true)
	ctx := context.Background()
	require.NoError(t, f.statusRepo.Register(ctx, "org-1", status.EntityLicensePlate, "lp-1", "PENDING"))

	result, err := f.svc.ChangeStatus(ctx, ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "lp-1",
		ToStatus:   status.StatusPassed,
		Reason:     "QA inspection passed all tests",
		ActorID:    "inspector",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "PASSED", result.NewStatus)
	assert.NotEmpty(t, result.HistoryID)

	// round-trip: pointer updated and latest entry records PENDING -> PASSED
	current, found, err := f.statusRepo.GetCurrent(ctx, "org-1", status.EntityLicensePlate, "lp-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "PASSED", current)

	last := f.history.last()
	require.NotNil(t, last)
	require.NotNil(t, last.FromStatus)
	assert.Equal(t, "PENDING", *last.FromStatus)
	assert.Equal(t, "PASSED", last.ToStatus)
	assert.Equal(t, "inspector", last.ChangedBy)
}

func TestStatusService_ChangeStatus_EntityNotFound(t *testing.T) {
	f := newStatusFixture(true)

	_, err := f.svc.ChangeStatus(context.Background(), ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "missing",
		ToStatus:   status.StatusPassed,
		Reason:     "test reason here",
		ActorID:    "inspector",
	})
	assert.True(t, qerrors.IsNotFound(err))
}

func TestStatusService_ChangeStatus_MissingReason(t *testing.T) {
	f := newStatusFixture(true)
	ctx := context.Background()
	require.NoError(t, f.statusRepo.Register(ctx, "org-1", status.EntityLicensePlate, "lp-1", "PENDING"))

	_, err := f.svc.ChangeStatus(ctx, ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "lp-1",
		ToStatus:   status.StatusHold,
		Reason:     "",
		ActorID:    "inspector",
	})
	require.True(t, qerrors.IsValidation(err))

	var ve *qerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Errors, transition.MsgReasonRequired)
	assert.True(t, ve.RequiredActions.ReasonRequired)
}

func TestStatusService_ChangeStatus_MissingInspection(t *testing.T) {
	f := newStatusFixture(false)
	ctx := context.Background()
	require.NoError(t, f.statusRepo.Register(ctx, "org-1", status.EntityBatch, "b-1", "PENDING"))

	_, err := f.svc.ChangeStatus(ctx, ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityBatch,
		EntityID:   "b-1",
		ToStatus:   status.StatusPassed,
		Reason:     "attempting without inspection",
		ActorID:    "inspector",
	})
	var ve *qerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Errors, transition.MsgInspectionRequired)
	assert.True(t, ve.RequiredActions.InspectionRequired)
}

func TestStatusService_ChangeStatus_ApprovalGate(t *testing.T) {
	f := newStatusFixture(true)
	ctx := context.Background()
	require.NoError(t, f.statusRepo.Register(ctx, "org-1", status.EntityLicensePlate, "lp-1", "PENDING"))

	// inspector cannot quarantine
	_, err := f.svc.ChangeStatus(ctx, ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "lp-1",
		ToStatus:   status.StatusQuarantined,
		Reason:     "critical issue found",
		ActorID:    "inspector",
	})
	var ve *qerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.RequiredActions.ApprovalRequired)

	// manager can
	result, err := f.svc.ChangeStatus(ctx, ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "lp-1",
		ToStatus:   status.StatusQuarantined,
		Reason:     "critical issue found",
		ActorID:    "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "QUARANTINED", result.NewStatus)
}

func TestStatusService_ChangeStatus_ConcurrentModification(t *testing.T) {
	f := newStatusFixture(true)

	// First read (validation) sees PENDING, re-read inside the transaction
	// sees HOLD: another writer got there first.
	f.statusRepo.getCurrentFunc = func(call int) (string, bool, error) {
		if call == 1 {
			return "PENDING", true, nil
		}
		return "HOLD", true, nil
	}

	_, err := f.svc.ChangeStatus(context.Background(), ChangeStatusRequest{
		OrgID:      "org-1",
		EntityType: status.EntityLicensePlate,
		EntityID:   "lp-1",
		ToStatus:   status.StatusQuarantined,
		Reason:     "critical issue found",
		ActorID:    "manager",
	})
	require.True(t, qerrors.IsConcurrency(err))

	var ce *qerrors.ConcurrencyError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Retryable())
	assert.Equal(t, "PENDING", ce.Expected)
	assert.Equal(t, "HOLD", ce.Actual)
}

func TestStatusService_RegisterEntity_FirstHistoryEntryHasNullFrom(t *testing.T) {
	f := newStatusFixture(true)
	ctx := context.Background()

	result, err := f.svc.RegisterEntity(ctx, "org-1", status.EntityLicensePlate, "lp-9", "inspector")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.NewStatus)

	entries, err := f.svc.History(ctx, "org-1", status.EntityLicensePlate, "lp-9", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FromStatus)
	assert.Equal(t, "PENDING", entries[0].ToStatus)
}

func TestStatusService_History_EmptyForUnknownEntity(t *testing.T) {
	f := newStatusFixture(true)

	entries, err := f.svc.History(context.Background(), "org-1", status.EntityBatch, "no-such", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStatusService_History_NewestFirst(t *testing.T) {
	f := newStatusFixture(true)
	ctx := context.Background()
	_, err := f.svc.RegisterEntity(ctx, "org-1", status.EntityLicensePlate, "lp-1", "inspector")
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, ChangeStatusRequest{
		OrgID: "org-1", EntityType: status.EntityLicensePlate, EntityID: "lp-1",
		ToStatus: status.StatusHold, Reason: "investigation required", ActorID: "inspector",
	})
	require.NoError(t, err)

	entries, err := f.svc.History(ctx, "org-1", status.EntityLicensePlate, "lp-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "HOLD", entries[0].ToStatus)
	assert.Nil(t, entries[1].FromStatus)
}
