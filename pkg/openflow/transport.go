package openflow

// Transport 定义到OpenFlow控制器的下发边界
// 报文编码、交换机连接管理都在Transport实现的另一侧，本模块不关心
type Transport interface {
	// Submit 同步提交一条flow_mod，返回控制器是否接受
	// 接受只表示提交成功，真正的执行结果通过CompletionHandler异步通知
	Submit(match *Match, mod *FlowMod) bool
}

// CompletionHandler 接收flow_mod的异步完成通知
// Transport实现必须保证：同一操作的完成通知不会早于Submit返回之前送达
type CompletionHandler interface {
	// OnFlowSuccess 操作执行成功
	OnFlowSuccess(match *Match, mod *FlowMod, msg string)
	// OnFlowFailure 操作执行失败
	OnFlowFailure(match *Match, mod *FlowMod, msg string)
}
