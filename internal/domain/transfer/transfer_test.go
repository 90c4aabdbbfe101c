package transfer

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

func makeRequest(t *testing.T, quantities ...int64) *TransferRequest {
	t.Helper()

	lines := make([]*TransferLine, 0, len(quantities))
	for _, qty := range quantities {
		line, err := NewTransferLine(uuid.New(), qty)
		require.NoError(t, err)
		lines = append(lines, line)
	}

	req, err := NewTransferRequest(
		NewTransferNumber(time.Now()),
		valueobject.CentralDCLocation(),
		valueobject.StoreLocation(uuid.New()),
		uuid.New(), TransferPriorityNormal, "restock", lines,
	)
	require.NoError(t, err)
	return req
}

func fullApproval(req *TransferRequest) []LineApproval {
	approvals := make([]LineApproval, 0, len(req.Lines))
	for _, line := range req.Lines {
		approvals = append(approvals, LineApproval{LineID: line.ID, Quantity: line.RequestedQuantity})
	}
	return approvals
}

func TestNewTransferNumber(t *testing.T) {
	number := NewTransferNumber(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^TRF-20260831-[0-9a-f]{8}$`), number)
}

func TestNewTransferRequest(t *testing.T) {
	t.Run("valid request starts pending", func(t *testing.T) {
		req := makeRequest(t, 10, 5)
		assert.Equal(t, TransferStatusPending, req.Status)
		assert.True(t, req.Source().IsCentralDC())
		assert.True(t, req.Destination().IsStore())
		assert.Len(t, req.Lines, 2)
	})

	t.Run("same location rejected", func(t *testing.T) {
		storeID := uuid.New()
		line, err := NewTransferLine(uuid.New(), 1)
		require.NoError(t, err)

		_, err = NewTransferRequest("TRF-20260831-deadbeef",
			valueobject.StoreLocation(storeID), valueobject.StoreLocation(storeID),
			uuid.New(), "", "", []*TransferLine{line})
		assert.ErrorIs(t, err, shared.ErrSameLocation)

		_, err = NewTransferRequest("TRF-20260831-deadbeef",
			valueobject.CentralDCLocation(), valueobject.CentralDCLocation(),
			uuid.New(), "", "", []*TransferLine{line})
		assert.ErrorIs(t, err, shared.ErrSameLocation)
	})

	t.Run("no lines rejected", func(t *testing.T) {
		_, err := NewTransferRequest("TRF-20260831-deadbeef",
			valueobject.CentralDCLocation(), valueobject.StoreLocation(uuid.New()),
			uuid.New(), "", "", nil)
		assert.Error(t, err)
	})

	t.Run("empty priority defaults to normal", func(t *testing.T) {
		line, err := NewTransferLine(uuid.New(), 1)
		require.NoError(t, err)

		req, err := NewTransferRequest("TRF-20260831-deadbeef",
			valueobject.CentralDCLocation(), valueobject.StoreLocation(uuid.New()),
			uuid.New(), "", "", []*TransferLine{line})
		require.NoError(t, err)
		assert.Equal(t, TransferPriorityNormal, req.Priority)
	})

	t.Run("explicit priority kept", func(t *testing.T) {
		line, err := NewTransferLine(uuid.New(), 1)
		require.NoError(t, err)

		req, err := NewTransferRequest("TRF-20260831-deadbeef",
			valueobject.CentralDCLocation(), valueobject.StoreLocation(uuid.New()),
			uuid.New(), TransferPriorityHigh, "", []*TransferLine{line})
		require.NoError(t, err)
		assert.Equal(t, TransferPriorityHigh, req.Priority)
	})

	t.Run("unknown priority rejected", func(t *testing.T) {
		line, err := NewTransferLine(uuid.New(), 1)
		require.NoError(t, err)

		_, err = NewTransferRequest("TRF-20260831-deadbeef",
			valueobject.CentralDCLocation(), valueobject.StoreLocation(uuid.New()),
			uuid.New(), TransferPriority("urgent"), "", []*TransferLine{line})
		assert.Error(t, err)
	})
}

func TestTransferStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TransferStatus
		to      TransferStatus
		allowed bool
	}{
		{TransferStatusPending, TransferStatusApproved, true},
		{TransferStatusPending, TransferStatusRejected, true},
		{TransferStatusPending, TransferStatusCancelled, true},
		{TransferStatusPending, TransferStatusCompleted, false},
		{TransferStatusApproved, TransferStatusCompleted, true},
		{TransferStatusApproved, TransferStatusCancelled, true},
		{TransferStatusApproved, TransferStatusRejected, false},
		{TransferStatusRejected, TransferStatusApproved, false},
		{TransferStatusCompleted, TransferStatusCancelled, false},
		{TransferStatusCancelled, TransferStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransferApprove(t *testing.T) {
	t.Run("partial quantities accepted", func(t *testing.T) {
		req := makeRequest(t, 10, 5)
		err := req.Approve([]LineApproval{
			{LineID: req.Lines[0].ID, Quantity: 8},
			{LineID: req.Lines[1].ID, Quantity: 5},
		})
		require.NoError(t, err)

		assert.Equal(t, TransferStatusApproved, req.Status)
		assert.Equal(t, int64(8), req.Lines[0].ApprovedQuantity)
		assert.Equal(t, int64(5), req.Lines[1].ApprovedQuantity)
	})

	t.Run("over-approval rejected", func(t *testing.T) {
		req := makeRequest(t, 10)
		err := req.Approve([]LineApproval{{LineID: req.Lines[0].ID, Quantity: 11}})
		assert.ErrorIs(t, err, shared.ErrQuantityExceedsRequested)
		assert.Equal(t, TransferStatusPending, req.Status)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		req := makeRequest(t, 10)
		err := req.Approve([]LineApproval{{LineID: req.Lines[0].ID, Quantity: 0}})
		assert.Error(t, err)
	})

	t.Run("approval must cover every line", func(t *testing.T) {
		req := makeRequest(t, 10, 5)
		err := req.Approve([]LineApproval{{LineID: req.Lines[0].ID, Quantity: 10}})
		assert.Error(t, err)
	})

	t.Run("approving twice rejected", func(t *testing.T) {
		req := makeRequest(t, 10)
		require.NoError(t, req.Approve(fullApproval(req)))
		assert.ErrorIs(t, req.Approve(fullApproval(req)), shared.ErrInvalidState)
	})
}

func TestTransferRejectAndCancel(t *testing.T) {
	t.Run("reject requires a reason", func(t *testing.T) {
		req := makeRequest(t, 10)
		assert.Error(t, req.Reject(""))
		require.NoError(t, req.Reject("source store is closing"))
		assert.Equal(t, TransferStatusRejected, req.Status)
	})

	t.Run("cancel from pending", func(t *testing.T) {
		req := makeRequest(t, 10)
		require.NoError(t, req.Cancel())
		assert.Equal(t, TransferStatusCancelled, req.Status)
	})

	t.Run("cancel from approved", func(t *testing.T) {
		req := makeRequest(t, 10)
		require.NoError(t, req.Approve(fullApproval(req)))
		require.NoError(t, req.Cancel())
	})

	t.Run("cancel after execution rejected", func(t *testing.T) {
		req := makeRequest(t, 10)
		require.NoError(t, req.Approve(fullApproval(req)))
		require.NoError(t, req.MarkExecuted())
		assert.ErrorIs(t, req.Cancel(), shared.ErrInvalidState)
	})
}

func TestTransferMarkExecuted(t *testing.T) {
	t.Run("records transferred quantities", func(t *testing.T) {
		req := makeRequest(t, 10, 5)
		require.NoError(t, req.Approve([]LineApproval{
			{LineID: req.Lines[0].ID, Quantity: 7},
			{LineID: req.Lines[1].ID, Quantity: 5},
		}))
		require.NoError(t, req.MarkExecuted())

		assert.Equal(t, TransferStatusCompleted, req.Status)
		assert.Equal(t, int64(7), req.Lines[0].TransferredQuantity)
		assert.Equal(t, int64(5), req.Lines[1].TransferredQuantity)
	})

	t.Run("execution requires approval", func(t *testing.T) {
		req := makeRequest(t, 10)
		assert.ErrorIs(t, req.MarkExecuted(), shared.ErrInvalidState)
	})
}

func TestNewQuickTransfer(t *testing.T) {
	line, err := NewTransferLine(uuid.New(), 3)
	require.NoError(t, err)

	req, err := NewQuickTransfer(NewTransferNumber(time.Now()),
		valueobject.StoreLocation(uuid.New()), valueobject.CentralDCLocation(),
		uuid.New(), TransferPriorityHigh, "damaged goods return", []*TransferLine{line})
	require.NoError(t, err)

	assert.Equal(t, TransferStatusCompleted, req.Status)
	assert.Equal(t, TransferPriorityHigh, req.Priority)
	assert.Equal(t, int64(3), req.Lines[0].ApprovedQuantity)
	assert.Equal(t, int64(3), req.Lines[0].TransferredQuantity)
}
