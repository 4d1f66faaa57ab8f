package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"heartpredict/dispatch"
	"heartpredict/record"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageChoices 下拉框选项
type pageChoices struct {
	Sex            []string
	ChestPainType  []string
	FastingBS      []string
	RestingECG     []string
	ExerciseAngina []string
	STSlope        []string
}

type pageError struct {
	Kind    string
	Message string
}

// pageData 页面渲染数据
type pageData struct {
	Form    record.Form
	Choices pageChoices
	Fields  []string
	Models  []ModelResponse
	Results []dispatch.Outcome
	Error   *pageError
}

// defaultForm 页面初始值
func defaultForm() record.Form {
	return record.Form{
		Age:            50,
		Sex:            "Male",
		ChestPainType:  "ATA",
		RestingBP:      120,
		Cholesterol:    200,
		FastingBS:      record.FastingLow,
		RestingECG:     "Normal",
		MaxHR:          150,
		ExerciseAngina: "N",
		Oldpeak:        1.0,
		STSlope:        "Up",
	}
}

func (h *Handler) page(form record.Form) pageData {
	return pageData{
		Form: form,
		Choices: pageChoices{
			Sex:            record.Categories[record.FieldSex],
			ChestPainType:  record.Categories[record.FieldChestPainType],
			FastingBS:      []string{record.FastingLow, record.FastingHigh},
			RestingECG:     record.Categories[record.FieldRestingECG],
			ExerciseAngina: record.Categories[record.FieldExerciseAngina],
			STSlope:        record.Categories[record.FieldSTSlope],
		},
		Fields: record.Fields,
		Models: h.modelInfo(),
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.page(defaultForm()))
}

// handlePredictForm 处理HTML表单提交
func (h *Handler) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	data := h.page(form)
	if err == nil {
		var resp *PredictResponse
		resp, err = h.predictForm(r.Context(), form)
		if err == nil {
			data.Results = resp.Results
			h.render(w, http.StatusOK, data)
			return
		}
	}
	status, kind := h.failure(r, SourceForm, err)
	data.Error = &pageError{Kind: kind, Message: err.Error()}
	h.render(w, status, data)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		h.Logger.Error("render page", zap.Error(err))
	}
}

// parseForm 从表单字段读取Form；数值字段无法解析时返回errBadRequest
func parseForm(r *http.Request) (record.Form, error) {
	if err := r.ParseForm(); err != nil {
		return defaultForm(), fmt.Errorf("%w: %v", errBadRequest, err)
	}
	form := record.Form{
		Sex:            r.PostFormValue(record.FieldSex),
		ChestPainType:  r.PostFormValue(record.FieldChestPainType),
		FastingBS:      r.PostFormValue(record.FieldFastingBS),
		RestingECG:     r.PostFormValue(record.FieldRestingECG),
		ExerciseAngina: r.PostFormValue(record.FieldExerciseAngina),
		STSlope:        r.PostFormValue(record.FieldSTSlope),
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{record.FieldAge, &form.Age},
		{record.FieldRestingBP, &form.RestingBP},
		{record.FieldCholesterol, &form.Cholesterol},
		{record.FieldMaxHR, &form.MaxHR},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(r.PostFormValue(f.field))
		if err != nil {
			return form, fmt.Errorf("%w: %s: %q is not an integer", errBadRequest, f.field, r.PostFormValue(f.field))
		}
		*f.dst = v
	}
	oldpeak, err := strconv.ParseFloat(r.PostFormValue(record.FieldOldpeak), 64)
	if err != nil {
		return form, fmt.Errorf("%w: %s: %q is not a number", errBadRequest, record.FieldOldpeak, r.PostFormValue(record.FieldOldpeak))
	}
	form.Oldpeak = oldpeak
	return form, nil
}
