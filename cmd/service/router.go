package service

import (
	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/cmd/service/handler"
	"github.com/gridbase/gridbase/cmd/service/middleware"
	"github.com/gridbase/gridbase/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.AcceptLanguage())
	s.Engine.Use(middleware.SetAppid(s.Core))
	s.Engine.Use(middleware.Instrument(s.Core.Metrics()))

	s.Engine.GET("/metrics", metrics.Handler())

	apiV1 := s.Engine.Group("/api/v1")
	apiV1.Use(middleware.Authorization(s.Core), middleware.UseLimit(s.Core))
	{
		tables := apiV1.Group("/tables")
		{
			tables.POST("", s.CreateTable)
			tables.GET("", s.ListTables)
			tables.GET("/:tableid", s.GetTable)
			tables.PUT("/:tableid", s.UpdateTable)
			tables.DELETE("/:tableid", s.DeleteTable)

			tables.POST("/:tableid/columns", s.AddColumn)
			tables.PUT("/:tableid/columns/swap", s.SwapColumns)
			tables.PUT("/:tableid/columns/:columnid", s.UpdateColumn)
			tables.GET("/:tableid/columns/:columnid/options", s.GetColumnOptions)
			tables.DELETE("/:tableid/columns/:columnid", s.DeleteColumn)

			tables.POST("/:tableid/rows", s.CreateRecord)
			tables.GET("/:tableid/rows", s.ListRecords)
			tables.GET("/:tableid/rows/:rowid", s.GetRecord)
			tables.PUT("/:tableid/rows/:rowid", s.UpdateRecord)
			tables.DELETE("/:tableid/rows/:rowid", s.DeleteRecord)

			tables.POST("/:tableid/mass", s.MassAction)

			tables.GET("/:tableid/inventory", s.GetTableInventorySummary)
			tables.DELETE("/:tableid/inventory", s.ClearTableTransactions)
			tables.GET("/:tableid/inventory/:itemid", s.GetItemInventorySummary)
			tables.GET("/:tableid/inventory/:itemid/transactions", s.ListItemTransactions)
			tables.POST("/:tableid/inventory/sale", s.RecordSale)
			tables.POST("/:tableid/inventory/adjust", s.RecordAdjustment)
		}

		apiV1.GET("/stock/check", s.CheckStockLevels)

		tokens := apiV1.Group("/tokens")
		{
			tokens.POST("", s.CreateAccessToken)
			tokens.GET("", s.ListAccessTokens)
			tokens.DELETE("", s.DeleteAccessTokens)
		}
	}

	// 公开只读面，同样走令牌鉴权，访问范围由令牌的表授权列表决定
	public := s.Engine.Group("/api/public")
	public.Use(middleware.Authorization(s.Core))
	{
		public.GET("/tables", s.ListPublicTables)
		public.GET("/tables/search", s.SearchTablesByColumns)
		public.GET("/tables/:tableid/items", s.ListPublicTableItems)
		public.GET("/tables/:tableid/items/:itemid", s.GetPublicTableItem)
		public.GET("/tables/:tableid/items/:itemid/availability", s.CheckAvailability)
		public.GET("/query", s.QueryPublicRecords)
		public.GET("/values", s.DistinctPublicValues)
	}
}
