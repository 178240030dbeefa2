package oplog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/internal/testutil"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePersists(t *testing.T) {
	db := testutil.NewDB(t)
	d := dao.NewOperationLogDAO(db)
	h := NewHandler(d, logging.Nop())

	b, err := json.Marshal(Entry{
		ActionName: "post_api_admin_system_role", Path: "/api/admin/system/role", Method: "POST",
		Status: 200, UserID: 7, Time: "2024-05-01T10:00:00Z", Body: `{"name":"ops"}`, TraceID: "t-9",
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), kafkaGo.Message{Value: b}))

	list, total, err := d.List(context.Background(), dao.OperationLogFilter{UserID: 7})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "t-9", list[0].TraceID)
	assert.Equal(t, 2024, list[0].CreatedAt.Year())
}

func TestHandleDropsMalformed(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewHandler(dao.NewOperationLogDAO(db), logging.Nop())
	assert.NoError(t, h.Handle(context.Background(), kafkaGo.Message{Value: []byte("{")}))
}

func TestRecordTruncatesBody(t *testing.T) {
	r := Entry{Body: strings.Repeat("x", maxBodyLen+10), Query: "page=1"}.Record()
	assert.Len(t, r.Body, maxBodyLen)
	assert.True(t, strings.HasPrefix(r.Body, "page=1 "))
	assert.False(t, r.CreatedAt.IsZero())
}
