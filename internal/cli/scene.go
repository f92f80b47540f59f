package cli

import (
	"strings"

	"storyline-cli/internal/model"
	"storyline-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newSceneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Scene metadata",
	}
	cmd.AddCommand(newSceneSetCmd(app))
	return cmd
}

func newSceneSetCmd(app *App) *cobra.Command {
	var goal, viewpoint, perspective, characters, contextItems string
	var storyTime int64
	var clearStoryTime bool
	cmd := &cobra.Command{
		Use:   "set <scene-id>",
		Short: "Edit goal, viewpoint, perspective, story time and active characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p mutate.ScenePatch
			f := cmd.Flags()
			if f.Changed("goal") {
				p.Goal = &goal
			}
			if f.Changed("viewpoint") {
				p.ViewpointCharacterID = &viewpoint
			}
			if f.Changed("perspective") {
				pv := model.Perspective(strings.ToUpper(strings.TrimSpace(perspective)))
				p.Perspective = &pv
			}
			if f.Changed("story-time") {
				p.StoryTime = &storyTime
			}
			p.ClearStoryTime = clearStoryTime
			if f.Changed("characters") {
				p.ActiveCharacterIDs = nonNil(trimIDs([]string{characters}))
			}
			if f.Changed("context-items") {
				p.ActiveContextItemIDs = nonNil(trimIDs([]string{contextItems}))
			}

			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			res, err := mutate.UpdateSceneMeta(l.db, strings.TrimSpace(args[0]), p)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.Node,
				"meta": map[string]any{"changed": res.Changed},
			})
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "Scene goal")
	cmd.Flags().StringVar(&viewpoint, "viewpoint", "", "Viewpoint character id")
	cmd.Flags().StringVar(&perspective, "perspective", "", "FIRST|THIRD (empty clears)")
	cmd.Flags().Int64Var(&storyTime, "story-time", 0, "Minutes from the story epoch (may be negative)")
	cmd.Flags().BoolVar(&clearStoryTime, "clear-story-time", false, "Remove the story time")
	cmd.Flags().StringVar(&characters, "characters", "", "Comma-separated active character ids (empty clears)")
	cmd.Flags().StringVar(&contextItems, "context-items", "", "Comma-separated active context item ids (empty clears)")
	cmd.MarkFlagsMutuallyExclusive("story-time", "clear-story-time")
	return cmd
}

// nonNil keeps an explicit empty list distinct from "not given".
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
