package layout

import (
	"strings"

	"github.com/ByLCY/snappdf/binding"
	"github.com/ByLCY/snappdf/dsl"
)

// Plan 是清单文件解析后的合成计划：页面、元信息与按顺序排列的图片路径。
type Plan struct {
	Page   PageSize
	Meta   DocumentMeta
	Images []string
}

// PlanFromManifest 把清单 AST 转成合成计划，meta 中的字符串会按 data 做 ${} 插值。
func PlanFromManifest(doc *dsl.Document, data any) (Plan, error) {
	if doc == nil {
		return Plan{}, invalidInput("清单为空")
	}
	var (
		plan    Plan
		section *dsl.PageSection
	)
	for _, s := range doc.Sections {
		switch {
		case s.Meta != nil:
			plan.Meta = collectMeta(s.Meta, data)
		case s.Page != nil && section == nil:
			section = s.Page
		}
	}
	if section == nil {
		return Plan{}, invalidInput("清单中缺少 page 段落")
	}

	page, err := pageFromSpec(section.Spec)
	if err != nil {
		return Plan{}, err
	}
	plan.Page = page

	if section.Block != nil {
		for _, st := range section.Block.Statements {
			if st.Command == nil || st.Command.Name != "image" {
				continue
			}
			if len(st.Command.Args) == 0 || st.Command.Args[0].Value == "" {
				return Plan{}, invalidInput("第 %d 行的 image 语句缺少路径", st.Command.Pos.Line)
			}
			plan.Images = append(plan.Images, binding.Interpolate(st.Command.Args[0].Value, data))
		}
	}
	if len(plan.Images) == 0 {
		return Plan{}, invalidInput("page 段落中没有 image 语句")
	}
	if plan.Meta.Title == "" {
		plan.Meta.Title = doc.Name
	}
	return plan, nil
}

func pageFromSpec(spec dsl.PageSpec) (PageSize, error) {
	var orientation, margin string
	for i := 0; i < len(spec.Params); i++ {
		switch v := strings.ToLower(spec.Params[i].Value); v {
		case "portrait", "landscape":
			orientation = v
		case "margin":
			if i+1 >= len(spec.Params) {
				return PageSize{}, invalidInput("margin 后缺少数值")
			}
			i++
			margin = spec.Params[i].Value
		}
	}
	return ParsePageSize(spec.Size, orientation, margin)
}

func collectMeta(section *dsl.MetaSection, data any) DocumentMeta {
	var meta DocumentMeta
	if section.Block == nil {
		return meta
	}
	for _, st := range section.Block.Statements {
		if st.Assignment == nil {
			continue
		}
		val := st.Assignment.Value
		switch strings.ToLower(st.Assignment.Key) {
		case "title":
			meta.Title = binding.Interpolate(val.Text(), data)
		case "author":
			meta.Author = binding.Interpolate(val.Text(), data)
		case "subject":
			meta.Subject = binding.Interpolate(val.Text(), data)
		case "creator":
			meta.Creator = binding.Interpolate(val.Text(), data)
		case "keywords":
			for _, kw := range val.Strings() {
				meta.Keywords = append(meta.Keywords, binding.Interpolate(kw, data))
			}
		}
	}
	return meta
}
