package httptransport

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suimail/backend/internal/chain"
	"suimail/backend/internal/service"
	"suimail/backend/internal/storage/memory"
)

func newKioskTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	svc := service.NewKioskService(store, store, chain.NewCaller(chain.NopRelay{}), nil)
	handler := NewKioskHandler(svc, nil)

	// 测试路由用固定钱包替代 JWT 中间件
	asOwner := func(c *gin.Context) { c.Set("wallet", "0xaaa") }

	router := gin.New()
	router.POST("/create_kiosk", asOwner, handler.Create)
	router.POST("/add_kiosk_item", asOwner, handler.AddItem)
	return router
}

func TestKioskHandlerCreate(t *testing.T) {
	t.Run("重复创建返回400", func(t *testing.T) {
		router := newKioskTestRouter(t)
		body := `{"kioskId":"kiosk-1"}`

		w := postJSON(t, router, "/create_kiosk", body)
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, router, "/create_kiosk", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestKioskHandlerAddItem(t *testing.T) {
	t.Run("重复商品ID返回400", func(t *testing.T) {
		router := newKioskTestRouter(t)

		w := postJSON(t, router, "/create_kiosk", `{"kioskId":"kiosk-1"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		body := `{"itemId":"item-1","kioskId":"kiosk-1","title":"guide","contentCid":"QmItem","price":500}`

		w = postJSON(t, router, "/add_kiosk_item", body)
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, router, "/add_kiosk_item", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
