package site

import "context"

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageLoadContent   StageName = "load_content"
	StageLoadSidebars  StageName = "load_sidebars"
	StageValidateLinks StageName = "validate_links"
	StageRenderDocs    StageName = "render_docs"
	StageRenderBlog    StageName = "render_blog"
	StageRenderPages   StageName = "render_pages"
	StageCopyStatic    StageName = "copy_static"
	StageVerifyOutput  StageName = "verify_output"
	StageFinalize      StageName = "finalize"
)

// Stage is one step of the pipeline.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

func buildStages() []StageDef {
	return []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageLoadContent, stageLoadContent},
		{StageLoadSidebars, stageLoadSidebars},
		{StageValidateLinks, stageValidateLinks},
		{StageRenderDocs, stageRenderDocs},
		{StageRenderBlog, stageRenderBlog},
		{StageRenderPages, stageRenderPages},
		{StageCopyStatic, stageCopyStatic},
		{StageVerifyOutput, stageVerifyOutput},
		{StageFinalize, stageFinalize},
	}
}

// validationStages runs the consistency pass without producing output.
func validationStages() []StageDef {
	return []StageDef{
		{StageLoadContent, stageLoadContent},
		{StageLoadSidebars, stageLoadSidebars},
		{StageValidateLinks, stageValidateLinks},
	}
}

// navigationStages loads content and the navigation tree only.
func navigationStages() []StageDef {
	return []StageDef{
		{StageLoadContent, stageLoadContent},
		{StageLoadSidebars, stageLoadSidebars},
	}
}
