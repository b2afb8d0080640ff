package report

// Palette is the default series and slice color order
var Palette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884d8", "#82ca9d"}

// Section ids of the built-in report, in navigation order
const (
	SectionOverview    = "overview"
	SectionPerformance = "performance"
	SectionBusiness    = "business"
	SectionEfficiency  = "efficiency"
	SectionFinancial   = "financial"
	SectionSummary     = "summary"
)

// Builtin returns the H1 2025 operating report. Each call returns a fresh copy.
func Builtin() *Report {
	quarters := []string{"Q1", "Q2"}

	r := &Report{
		Title:      "2025年上半年经营分析报告",
		Company:    "杭州某某科技公司",
		Period:     "2025年1月1日 - 2025年6月30日",
		ReportDate: "2025年7月15日",
		Language:   "zh-CN",
		Footer:     "杭州某某科技公司 © 2025 版权所有",
		Sections: []Section{
			{
				ID:        SectionOverview,
				Label:     "总体评价",
				Placement: PlacementMain,
				Paragraphs: []string{
					"2025年上半年，公司整体经营状况良好，实现营收稳步增长，盈利能力有所提升。" +
						"Q2业绩表现优于Q1，主要得益于**云计算业务的快速增长**和**成本控制措施的有效实施**。",
				},
				Charts: []Chart{{
					ID:         "overall-performance",
					Title:      "营收与利润趋势",
					Kind:       ChartArea,
					Categories: quarters,
					Series: []Series{
						{Name: "营收(万元)", Color: "#0088FE", Values: []float64{1200, 1500}},
						{Name: "利润(万元)", Color: "#00C49F", Values: []float64{300, 450}},
					},
				}},
				KPIs: []KPI{
					{Label: "上半年总营收", Value: "2700万元", Change: "同比增长25%"},
					{Label: "上半年总利润", Value: "750万元", Change: "同比增长35%"},
					{Label: "利润率", Value: "27.8%", Change: "同比增长3.2%"},
				},
			},
			{
				ID:        SectionPerformance,
				Label:     "整体经营业绩",
				Placement: PlacementMain,
				Charts: []Chart{
					{
						ID:         "quarterly-comparison",
						Title:      "季度业绩对比",
						Kind:       ChartBar,
						Categories: quarters,
						Series: []Series{
							{Name: "营收(万元)", Color: "#0088FE", Values: []float64{1200, 1500}},
							{Name: "利润(万元)", Color: "#00C49F", Values: []float64{300, 450}},
						},
					},
					{
						ID:    "business-segments",
						Title: "业务结构占比",
						Kind:  ChartPie,
						Slices: []Slice{
							{Label: "软件服务", Value: 45},
							{Label: "云计算", Value: 30},
							{Label: "数据服务", Value: 15},
							{Label: "其他", Value: 10},
						},
					},
				},
				Lists: []List{{
					Title: "业绩亮点",
					Style: ListCheck,
					Items: []string{
						"云计算业务增长显著，Q2同比增长45%",
						"利润率持续提升，从Q1的25%提升至Q2的30%",
						"新客户获取成本降低12%，客户留存率提升至85%",
					},
				}},
			},
			{
				ID:        SectionBusiness,
				Label:     "核心业务分析",
				Placement: PlacementMain,
				Charts: []Chart{{
					ID:         "business-trend",
					Title:      "主要业务季度增长趋势",
					Kind:       ChartLine,
					Categories: quarters,
					Series: []Series{
						{Name: "软件服务(百万元)", Values: []float64{180, 220}},
						{Name: "云计算(百万元)", Values: []float64{120, 180}},
						{Name: "数据服务(百万元)", Values: []float64{60, 75}},
					},
				}},
				Cards: []Card{
					{Title: "软件服务", Description: "核心业务收入稳定增长，市场份额保持领先", Badge: "增长12.5%"},
					{Title: "云计算", Description: "增长最快的业务板块，新签多个大客户", Badge: "增长50%"},
					{Title: "数据服务", Description: "新兴业务，增长潜力大，客户需求持续增加", Badge: "增长25%"},
				},
			},
			{
				ID:        SectionEfficiency,
				Label:     "运营效率与成本控制",
				Placement: PlacementMain,
				Charts: []Chart{
					{
						ID:         "per-capita-efficiency",
						Title:      "人均效能分析",
						Kind:       ChartBar,
						Categories: quarters,
						Series: []Series{
							{Name: "人均营收(万元)", Color: "#0088FE", Axis: AxisLeft, Values: []float64{10, 11.5}},
							{Name: "员工数量", Color: "#FF8042", Axis: AxisRight, Values: []float64{120, 130}},
						},
					},
					{
						ID:         "cost-structure",
						Title:      "成本结构分析",
						Kind:       ChartLine,
						Categories: quarters,
						Series: []Series{
							{Name: "支出(万元)", Color: "#FF8042", Axis: AxisLeft, Values: []float64{900, 1050}},
							{Name: "成本收入比", Color: "#8884d8", Axis: AxisRight, Values: []float64{0.75, 0.70}},
						},
					},
				},
				Lists: []List{
					{
						Title: "效率提升措施",
						Style: ListCheck,
						Items: []string{
							"实施数字化办公系统，提升协作效率",
							"优化业务流程，减少中间环节，缩短项目周期",
							"引入自动化工具，减少重复性工作",
						},
					},
					{
						Title: "成本控制重点",
						Style: ListCheck,
						Items: []string{
							"优化营销费用结构，提高投入产出比",
							"推行远程办公，降低办公场地成本",
							"供应商整合，获取更优采购价格",
						},
					},
				},
			},
			{
				ID:        SectionFinancial,
				Label:     "财务状况",
				Placement: PlacementMain,
				Charts: []Chart{{
					ID:    "asset-structure",
					Title: "资产结构",
					Kind:  ChartPie,
					Slices: []Slice{
						{Label: "现金", Value: 500},
						{Label: "应收账款", Value: 300},
						{Label: "存货", Value: 150},
						{Label: "固定资产", Value: 450},
					},
				}},
				Indicators: []Indicator{
					{Label: "流动比率", Value: "2.3", Percent: 75},
					{Label: "资产负债率", Value: "35%", Percent: 35},
					{Label: "毛利率", Value: "42%", Percent: 42},
					{Label: "净利率", Value: "27.8%", Percent: 27.8},
					{Label: "应收账款周转率", Value: "4.2次/年", Percent: 60},
				},
				Callout: &Callout{
					Title: "财务健康状况总结",
					Body:  "公司整体财务状况良好，资产结构合理，偿债能力较强，盈利能力稳定。现金流充足，为后续业务发展提供了有力支持。",
				},
			},
			{
				ID:        SectionSummary,
				Label:     "总结",
				Title:     "问题与建议",
				Placement: PlacementSidebar,
				Lists: []List{
					{
						Title: "存在问题",
						Style: ListNumbered,
						Items: []string{
							"核心业务增长放缓，市场份额下滑2.3%，增长率从18%降至8%",
							"运营成本控制不力，管理费用上升15%，高于营收增长率8%",
							"研发投入产出比1:2.1，低于行业平均1:3.5，创新效率低",
						},
					},
					{
						Group: "改进建议",
						Title: "两增策略",
						Style: ListPlus,
						Items: []string{
							"加大云计算投入，提升市场份额至35%",
							"研发人员占比从25%提升至35%",
						},
					},
					{
						Group: "改进建议",
						Title: "两降策略",
						Style: ListMinus,
						Items: []string{
							"非核心业务成本降低15%",
							"管理层级减少2个，提高决策效率30%",
						},
					},
				},
			},
		},
	}
	r.applyDefaults()
	return r
}
