package httptransport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/chain"
	"suimail/backend/internal/service"
	"suimail/backend/internal/storage/memory"
)

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newMailboxTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	svc := service.NewMailboxService(store, store, chain.NewCaller(chain.NopRelay{}), nil, nil)
	handler := NewMailboxHandler(svc, nil)

	router := gin.New()
	router.POST("/create_mailbox", handler.Create)
	return router
}

func TestMailboxHandlerCreate(t *testing.T) {
	t.Run("登记成功返回201", func(t *testing.T) {
		router := newMailboxTestRouter(t)

		w := postJSON(t, router, "/create_mailbox", `{"mailboxId":"mbx1","ownerWallet":"0xaaa"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("重复登记返回400", func(t *testing.T) {
		router := newMailboxTestRouter(t)
		body := `{"mailboxId":"mbx1","ownerWallet":"0xaaa"}`

		w := postJSON(t, router, "/create_mailbox", body)
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, router, "/create_mailbox", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("缺少所有者钱包返回400", func(t *testing.T) {
		router := newMailboxTestRouter(t)

		w := postJSON(t, router, "/create_mailbox", `{"mailboxId":"mbx1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
