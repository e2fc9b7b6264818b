package game

// WordPair 是一组词语和提示，卧底只能看到提示
type WordPair struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

var defaultWordBank = []WordPair{
	{Word: "西瓜", Hint: "水果"},
	{Word: "饺子", Hint: "食物"},
	{Word: "长城", Hint: "建筑"},
	{Word: "熊猫", Hint: "动物"},
	{Word: "钢琴", Hint: "乐器"},
	{Word: "火锅", Hint: "美食"},
	{Word: "地铁", Hint: "交通工具"},
	{Word: "雨伞", Hint: "日用品"},
	{Word: "篮球", Hint: "运动"},
	{Word: "月饼", Hint: "节日"},
	{Word: "咖啡", Hint: "饮品"},
	{Word: "牙刷", Hint: "日用品"},
	{Word: "医生", Hint: "职业"},
	{Word: "图书馆", Hint: "场所"},
	{Word: "手机", Hint: "电子产品"},
	{Word: "孙悟空", Hint: "神话人物"},
	{Word: "电影院", Hint: "娱乐"},
	{Word: "蛋糕", Hint: "甜点"},
	{Word: "企鹅", Hint: "动物"},
	{Word: "吉他", Hint: "乐器"},
}

// DefaultWordBank 返回内置词库的副本
func DefaultWordBank() []WordPair {
	bank := make([]WordPair, len(defaultWordBank))
	copy(bank, defaultWordBank)
	return bank
}
