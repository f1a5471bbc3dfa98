package warehouse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklake/internal/config"
	"booklake/internal/domain"
)

// fakeDataAPI scripts the Data API: a sequence of statuses to walk through
// before the terminal one, plus a canned result set.
type fakeDataAPI struct {
	statuses  []types.StatusString
	calls     int
	errText   string
	pages     []*redshiftdata.GetStatementResultOutput
	pageIndex int
	lastSQL   string
}

func (f *fakeDataAPI) ExecuteStatement(_ context.Context, in *redshiftdata.ExecuteStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error) {
	f.lastSQL = aws.ToString(in.Sql)
	return &redshiftdata.ExecuteStatementOutput{Id: aws.String("stmt-1")}, nil
}

func (f *fakeDataAPI) DescribeStatement(_ context.Context, _ *redshiftdata.DescribeStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error) {
	status := f.statuses[len(f.statuses)-1]
	if f.calls < len(f.statuses) {
		status = f.statuses[f.calls]
	}
	f.calls++
	out := &redshiftdata.DescribeStatementOutput{Status: status}
	if f.errText != "" {
		out.Error = aws.String(f.errText)
	}
	return out, nil
}

func (f *fakeDataAPI) GetStatementResult(_ context.Context, _ *redshiftdata.GetStatementResultInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.GetStatementResultOutput, error) {
	out := f.pages[f.pageIndex]
	if f.pageIndex < len(f.pages)-1 {
		f.pageIndex++
	}
	return out, nil
}

func testExecutor(t *testing.T, api statementAPI) *RedshiftExecutor {
	t.Helper()
	cfg := &config.Config{Redshift: config.RedshiftConfig{
		ClusterID:    "test-cluster",
		Database:     "book_sales",
		User:         "admin",
		PollInterval: time.Millisecond,
		Timeout:      50 * time.Millisecond,
	}}
	return newRedshiftExecutor(api, cfg, slog.New(slog.DiscardHandler))
}

func TestQueryDecodesTypedCells(t *testing.T) {
	api := &fakeDataAPI{
		statuses: []types.StatusString{
			types.StatusStringSubmitted,
			types.StatusStringStarted,
			types.StatusStringFinished,
		},
		pages: []*redshiftdata.GetStatementResultOutput{{
			ColumnMetadata: []types.ColumnMetadata{
				{Name: aws.String("title")},
				{Name: aws.String("total_sales")},
				{Name: aws.String("total_revenue")},
				{Name: aws.String("is_weekend")},
				{Name: aws.String("publisher")},
			},
			Records: [][]types.Field{{
				&types.FieldMemberStringValue{Value: "Dune"},
				&types.FieldMemberLongValue{Value: 42},
				&types.FieldMemberDoubleValue{Value: 1234.5},
				&types.FieldMemberBooleanValue{Value: true},
				&types.FieldMemberIsNull{Value: true},
			}},
		}},
	}

	rows, err := testExecutor(t, api).Query(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["title"])
	assert.Equal(t, int64(42), rows[0]["total_sales"])
	assert.Equal(t, 1234.5, rows[0]["total_revenue"])
	assert.Equal(t, true, rows[0]["is_weekend"])
	assert.Nil(t, rows[0]["publisher"])
}

func TestQueryPagesThroughResults(t *testing.T) {
	cols := []types.ColumnMetadata{{Name: aws.String("n")}}
	api := &fakeDataAPI{
		statuses: []types.StatusString{types.StatusStringFinished},
		pages: []*redshiftdata.GetStatementResultOutput{
			{
				ColumnMetadata: cols,
				Records:        [][]types.Field{{&types.FieldMemberLongValue{Value: 1}}},
				NextToken:      aws.String("p2"),
			},
			{
				ColumnMetadata: cols,
				Records:        [][]types.Field{{&types.FieldMemberLongValue{Value: 2}}},
			},
		},
	}

	rows, err := testExecutor(t, api).Query(context.Background(), "SELECT n FROM t")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["n"])
	assert.Equal(t, int64(2), rows[1]["n"])
}

func TestQueryEmptyResultIsNotNil(t *testing.T) {
	api := &fakeDataAPI{
		statuses: []types.StatusString{types.StatusStringFinished},
		pages: []*redshiftdata.GetStatementResultOutput{{
			ColumnMetadata: []types.ColumnMetadata{{Name: aws.String("n")}},
		}},
	}

	rows, err := testExecutor(t, api).Query(context.Background(), "SELECT n FROM t WHERE 1=0")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFailedStatementCarriesRemoteError(t *testing.T) {
	api := &fakeDataAPI{
		statuses: []types.StatusString{
			types.StatusStringPicked,
			types.StatusStringFailed,
		},
		errText: `relation "fact_sales" does not exist`,
	}

	err := testExecutor(t, api).Exec(context.Background(), "SELECT * FROM fact_sales")
	require.Error(t, err)
	var stmtErr *domain.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Contains(t, stmtErr.Message, "fact_sales")
	assert.Equal(t, string(types.StatusStringFailed), stmtErr.Status)
}

func TestAbortedStatementFails(t *testing.T) {
	api := &fakeDataAPI{statuses: []types.StatusString{types.StatusStringAborted}}

	err := testExecutor(t, api).Exec(context.Background(), "COPY ...")
	var stmtErr *domain.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, "unknown error", stmtErr.Message)
}

func TestNonTerminalStatementTimesOut(t *testing.T) {
	// Status never leaves STARTED; the 50ms test deadline must fire.
	api := &fakeDataAPI{statuses: []types.StatusString{types.StatusStringStarted}}

	done := make(chan error, 1)
	go func() {
		done <- testExecutor(t, api).Exec(context.Background(), "SELECT pg_sleep(600)")
	}()

	select {
	case err := <-done:
		var timeoutErr *domain.StatementTimeoutError
		require.ErrorAs(t, err, &timeoutErr)
	case <-time.After(5 * time.Second):
		t.Fatal("executor hung instead of timing out")
	}
}

func TestContextCancellationStopsPolling(t *testing.T) {
	api := &fakeDataAPI{statuses: []types.StatusString{types.StatusStringStarted}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testExecutor(t, api).Exec(ctx, "SELECT 1")
	require.ErrorIs(t, err, context.Canceled)
}
