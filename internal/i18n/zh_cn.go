package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// TUI - 面板标题
	"panel.timer":       "计时",
	"panel.todo":        "待办",
	"panel.backgrounds": "背景",
	"panel.help":        "帮助",

	// 计时器
	"timer.running":  "进行中",
	"timer.paused":   "已暂停",
	"timer.complete": "%s 时段结束！",
	"timer.preset":   "%d 分钟 %s",
	"timer.set":      "计时设为 %s（%s）",
	"timer.invalid":  "时长必须是正整数分钟",

	// 环境声
	"audio.on":       "噪声已开启",
	"audio.off":      "噪声已关闭",
	"audio.volume":   "音量 %d%%",
	"audio.kind":     "噪声：%s",
	"audio.disabled": "音频不可用",

	// 待办
	"todo.empty":       "暂无待办。",
	"todo.remaining":   "剩余 %d 项",
	"todo.filter":      "筛选：%s",
	"todo.placeholder": "要做什么？",
	"todo.added":       "已添加：%s",
	"todo.toggled":     "已切换：%s",
	"todo.deleted":     "已删除 #%d",
	"todo.cleared":     "已清除 %d 项已完成",
	"todo.not_found":   "没有 id 为 %d 的待办",

	// 背景
	"bg.current":            "背景：%s",
	"bg.upload_placeholder": "图片文件路径",
	"bg.uploaded":           "已上传 %s",
	"bg.removed":            "已删除 %s",
	"bg.preset":             "预设",
	"bg.upload":             "上传",

	// 语录
	"quote.title":   "语录",
	"quote.fetched": "已获取 %d 条语录",

	// 阻塞提示
	"alert.title":   "存储错误",
	"alert.dismiss": "按回车关闭",

	// 快捷键
	"keys.preset":     "预设",
	"keys.toggle":     "开始/暂停",
	"keys.reset":      "重置",
	"keys.volume_up":  "音量加",
	"keys.volume_dn":  "音量减",
	"keys.noise":      "噪声开关",
	"keys.noise_kind": "噪声类型",
	"keys.bg_next":    "下一个背景",
	"keys.bg_prev":    "上一个背景",
	"keys.tab":        "切换面板",
	"keys.add":        "添加",
	"keys.done":       "完成/取消",
	"keys.delete":     "删除",
	"keys.filter":     "筛选",
	"keys.clear":      "清除已完成",
	"keys.quote":      "下一条语录",
	"keys.help":       "帮助",
	"keys.quit":       "退出",
	"keys.upload":     "上传图片",

	// REPL
	"repl.welcome": "focusdesk %s，输入 /help 查看命令。",
	"repl.unknown": "未知命令：%s",
	"repl.bye":     "再见。",
	"repl.usage":   "用法：%s",

	// 错误
	"error.generic": "错误：%v",
	"error.storage": "存储错误：%v",
}
