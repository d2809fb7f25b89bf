package renderer

import (
	"fmt"

	"github.com/Kuowrk/fragma/engine/camera"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/Kuowrk/fragma/engine/model"
	"github.com/Kuowrk/fragma/engine/renderer/material"
	"github.com/Kuowrk/fragma/engine/renderer/registry"
	"github.com/Kuowrk/fragma/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

type computeStep struct {
	label     string
	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
	dispatch  [3]uint32
}

type copyStep struct {
	source        *wgpu.Texture
	width, height uint32
}

type drawStep struct {
	pipeline  *wgpu.RenderPipeline
	texture   *wgpu.BindGroup
	camera    *wgpu.BindGroup
	constants *wgpu.BindGroup
	model     model.Model
}

// framePlan is every GPU object a frame needs, resolved before any command is recorded.
type framePlan struct {
	computes []computeStep
	copies   []copyStep
	draws    []drawStep
}

// plan resolves scn against reg. Uniform uploads for the camera and draw constants happen here,
// ahead of the frame's encoder.
func (r *renderer) plan(reg registry.Reader, cam camera.Camera, scn scene.Scene) (*framePlan, error) {
	p := &framePlan{}
	surfaceW, surfaceH := r.viewport.Size()

	for _, obj := range scn.ComputeObjects() {
		m, err := reg.ComputeMaterial(obj.Material)
		if err != nil {
			return nil, err
		}
		out := obj.Output
		if out == nil {
			if out, err = reg.Texture(obj.Texture); err != nil {
				return nil, err
			}
		}
		p.computes = append(p.computes, computeStep{
			label:     obj.Material,
			pipeline:  m.Pipeline(),
			bindGroup: out.BindGroup(),
			dispatch:  m.DispatchSize(out.Width(), out.Height()),
		})

		if !obj.CopyToSurface || obj.Output == nil {
			continue
		}
		if !CopyCompatible(out.Format(), r.viewport.Format()) {
			if _, warned := r.warnedCopies[obj.ID]; !warned {
				r.warnedCopies[obj.ID] = struct{}{}
				logger.Warnf("compute object %s: output format %v cannot be copied to surface format %v", obj.ID, out.Format(), r.viewport.Format())
			}
			continue
		}
		p.copies = append(p.copies, copyStep{
			source: out.Texture(),
			width:  min(out.Width(), surfaceW),
			height: min(out.Height(), surfaceH),
		})
	}

	objects := scn.RenderObjects()
	if len(objects) == 0 {
		return p, nil
	}

	camBindGroup, err := cam.BindGroup(r.viewport.Aspect())
	if err != nil {
		return nil, err
	}
	constantsLayout, err := reg.Layout(registry.LayoutDrawConstants)
	if err != nil {
		return nil, err
	}
	gamma := boolToUint32(!r.viewport.IsSRGB())

	for _, obj := range objects {
		m, err := reg.RenderMaterial(obj.Material)
		if err != nil {
			return nil, err
		}
		tex, err := reg.Texture(obj.Texture)
		if err != nil {
			return nil, err
		}
		mdl, err := reg.Model(obj.Model)
		if err != nil {
			return nil, err
		}
		constants, err := r.drawConstants.BindGroup(material.GPUDrawConstants{
			FlipV:        boolToUint32(obj.FlipV),
			GammaCorrect: gamma,
		}, constantsLayout)
		if err != nil {
			return nil, err
		}
		p.draws = append(p.draws, drawStep{
			pipeline:  m.Pipeline(),
			texture:   tex.BindGroup(),
			camera:    camBindGroup,
			constants: constants,
			model:     mdl,
		})
	}
	return p, nil
}

// record encodes p into one command buffer targeting frame and submits it.
func (r *renderer) record(frame Frame, p *framePlan) error {
	encoder, err := r.device.CreateCommandEncoder("Frame Encoder")
	if err != nil {
		return fmt.Errorf("failed to create frame encoder: %w", err)
	}
	defer encoder.Release()

	for _, c := range p.computes {
		pass := encoder.BeginComputePass(c.label + " Compute Pass")
		pass.SetPipeline(c.pipeline)
		pass.SetBindGroup(0, c.bindGroup)
		pass.DispatchWorkgroups(c.dispatch[0], c.dispatch[1], c.dispatch[2])
		pass.End()
	}

	loadOp := wgpu.LoadOpClear
	for _, c := range p.copies {
		encoder.CopyTextureToTexture(c.source, frame.Texture(), c.width, c.height)
		loadOp = wgpu.LoadOpLoad
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Frame Render Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       frame.View(),
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.viewport.Background(),
		}},
	})
	for _, d := range p.draws {
		drawObject(pass, d)
	}
	pass.End()

	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	r.device.Submit(cmd)
	return nil
}

func drawObject(pass gpu.RenderPass, d drawStep) {
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, d.texture)
	pass.SetBindGroup(1, d.camera)
	pass.SetBindGroup(2, d.constants)
	d.model.Draw(pass)
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
