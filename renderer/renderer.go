package renderer

import "github.com/ByLCY/justify/layout"

// Renderer 将断行结果输出为最终形式，例如终端文本或 PDF。
// Render 返回生成的数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Func adapts a plain function to Renderer.
type Func func(result *layout.Result) ([]byte, error)

func (f Func) Render(result *layout.Result) ([]byte, error) { return f(result) }
