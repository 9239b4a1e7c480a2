package radio

import (
	"context"

	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

// remoteTool describes one catalog tool mirrored to the agent. Arguments
// pass through to the remote server unchanged.
type remoteTool struct {
	name   string
	desc   string
	params map[string]*genai.Schema
	req    []string
}

var catalogTools = []remoteTool{
	{name: "list_channels", desc: "List all radio channels with their IDs and descriptions."},
	{name: "get_channel_rightnow", desc: "What is on a channel right now, including the current and next program.",
		params: map[string]*genai.Schema{"channel_id": agent.IntProp("channel ID")}, req: []string{"channel_id"}},
	{name: "get_all_rightnow", desc: "What is on every channel right now."},
	{name: "get_channel_schedule", desc: "The broadcast schedule of a channel for a day.",
		params: map[string]*genai.Schema{
			"channel_id": agent.IntProp("channel ID"),
			"date":       agent.StringProp("schedule date, YYYY-MM-DD, defaults to today"),
		}, req: []string{"channel_id"}},
	{name: "get_playlist_rightnow", desc: "The song playing on a channel right now, with the previous and next song.",
		params: map[string]*genai.Schema{"channel_id": agent.IntProp("channel ID")}, req: []string{"channel_id"}},
	{name: "get_channel_playlist", desc: "Songs played on a channel in a time window.",
		params: map[string]*genai.Schema{
			"channel_id": agent.IntProp("channel ID"),
			"start_date": agent.StringProp("window start, YYYY-MM-DD"),
			"end_date":   agent.StringProp("window end, YYYY-MM-DD"),
		}, req: []string{"channel_id"}},
	{name: "search_programs", desc: "Search radio programs by name or topic.",
		params: map[string]*genai.Schema{"query": agent.StringProp("search text")}, req: []string{"query"}},
	{name: "get_program", desc: "Details of one program.",
		params: map[string]*genai.Schema{"program_id": agent.IntProp("program ID")}, req: []string{"program_id"}},
	{name: "list_program_categories", desc: "List program categories (news, culture, sports and so on)."},
	{name: "get_program_schedule", desc: "Upcoming scheduled broadcasts of a program.",
		params: map[string]*genai.Schema{"program_id": agent.IntProp("program ID")}, req: []string{"program_id"}},
	{name: "get_program_broadcasts", desc: "Past broadcasts of a program with listen links.",
		params: map[string]*genai.Schema{"program_id": agent.IntProp("program ID")}, req: []string{"program_id"}},
	{name: "get_program_playlist", desc: "Songs played in a program.",
		params: map[string]*genai.Schema{
			"program_id": agent.IntProp("program ID"),
			"date":       agent.StringProp("broadcast date, YYYY-MM-DD"),
		}, req: []string{"program_id"}},
	{name: "list_broadcasts", desc: "Available broadcasts of a program.",
		params: map[string]*genai.Schema{"program_id": agent.IntProp("program ID")}, req: []string{"program_id"}},
	{name: "list_extra_broadcasts", desc: "Extra broadcasts such as live sports, optionally for one channel.",
		params: map[string]*genai.Schema{"channel_id": agent.IntProp("channel ID, optional")}},
	{name: "list_podfiles", desc: "Podcast files of a program.",
		params: map[string]*genai.Schema{"program_id": agent.IntProp("program ID")}, req: []string{"program_id"}},
	{name: "get_podfile", desc: "One podcast file with its download URL.",
		params: map[string]*genai.Schema{"podfile_id": agent.IntProp("podfile ID")}, req: []string{"podfile_id"}},
	{name: "list_episodes", desc: "Episodes of a program, newest first.",
		params: map[string]*genai.Schema{
			"program_id": agent.IntProp("program ID"),
			"page":       agent.IntProp("result page, default 1"),
			"size":       agent.IntProp("page size, default 10"),
		}, req: []string{"program_id"}},
	{name: "search_episodes", desc: "Search episodes across all programs.",
		params: map[string]*genai.Schema{"query": agent.StringProp("search text")}, req: []string{"query"}},
	{name: "get_episode", desc: "Details of one episode with listen links.",
		params: map[string]*genai.Schema{"episode_id": agent.IntProp("episode ID")}, req: []string{"episode_id"}},
	{name: "get_episodes_batch", desc: "Several episodes in one call.",
		params: map[string]*genai.Schema{"episode_ids": agent.StringArrayProp("episode IDs")}, req: []string{"episode_ids"}},
	{name: "get_latest_episode", desc: "The most recent episode of a program.",
		params: map[string]*genai.Schema{"program_id": agent.IntProp("program ID")}, req: []string{"program_id"}},
	{name: "get_episode_playlist", desc: "Songs played in an episode.",
		params: map[string]*genai.Schema{"episode_id": agent.IntProp("episode ID")}, req: []string{"episode_id"}},
	{name: "list_news_programs", desc: "List the news programs."},
	{name: "get_latest_news_episodes", desc: "The latest episode of every news program."},
	{name: "get_traffic_messages", desc: "Current traffic messages, optionally filtered by area.",
		params: map[string]*genai.Schema{"traffic_area": agent.StringProp("traffic area name, optional")}},
	{name: "get_traffic_areas", desc: "List traffic areas, or find the area for a location.",
		params: map[string]*genai.Schema{"latitude": agent.StringProp("optional"), "longitude": agent.StringProp("optional")}},
	{name: "get_recently_published", desc: "Recently published audio across all programs.",
		params: map[string]*genai.Schema{"audio_type": agent.StringProp("episode, broadcast or podfile, optional")}},
	{name: "get_top_stories", desc: "The current top news stories."},
}

// Tools mirrors the remote catalog as agent tools. Every tool forwards its
// arguments verbatim and returns the server's text payload.
func (c *Catalog) Tools() []agent.Tool {
	tools := make([]agent.Tool, 0, len(catalogTools))
	for _, rt := range catalogTools {
		tools = append(tools, c.tool(rt))
	}
	return tools
}

func (c *Catalog) tool(rt remoteTool) agent.Tool {
	params := rt.params
	if params == nil {
		params = map[string]*genai.Schema{}
	}

	return agent.Func{
		Decl: &genai.FunctionDeclaration{
			Name:        rt.name,
			Description: rt.desc,
			Parameters:  agent.ObjectSchema(params, rt.req...),
		},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			text, err := c.Call(ctx, rt.name, args)
			if err != nil {
				return nil, err
			}
			return map[string]any{"result": text}, nil
		},
	}
}
