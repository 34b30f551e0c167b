package kmain

import (
	"bytes"
	"debug/elf"

	"rvos/kernel"
	"rvos/kernel/hal"
	"rvos/kernel/kfmt"
	"rvos/kernel/loader"
	"rvos/kernel/mem/pmm"
	"rvos/kernel/mem/vmm"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	appImages []appImage
)

// appImage pairs a registered application image with its name.
type appImage struct {
	name string
	data []byte
}

// RegisterAppImage queues an application image for inspection during boot.
// The platform entry code registers the images handed over by the loader
// stage before invoking Kmain.
func RegisterAppImage(name string, data []byte) {
	appImages = append(appImages, appImage{name: name, data: data})
}

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. The rt0 code runs on the boot stack with the MMU
// still disabled and passes the linker-provided boundary addresses of the
// kernel image together with the physical pool reserved past the image.
//
// Kmain brings up the console, seeds the physical allocators, constructs
// and activates the kernel's own address space and then reports the frame
// demand of every registered application image.
//
// Kmain is not expected to return. If it does, the rt0 code will park the
// hart.
//
//go:noinline
func Kmain(imageStart, codeEnd, transitEnd, rodataEnd, imageEnd, poolStart, poolSize uintptr) {
	hal.InitConsole()
	kfmt.Printf("[kmain] starting rvos\n")
	kfmt.Printf("[kmain] kernel image: 0x%x - 0x%x\n", imageStart, imageEnd)

	var err *kernel.Error
	if err = pmm.Init(poolStart, poolSize); err != nil {
		kfmt.Panic(err)
	}

	layout := vmm.Layout{
		Start:      imageStart,
		CodeEnd:    codeEnd,
		TransitEnd: transitEnd,
		RodataEnd:  rodataEnd,
		End:        imageEnd,
	}

	root, err := vmm.CreateKernelSpace(pmm.FrameAllocator(), layout)
	if err != nil {
		kfmt.Panic(err)
	}
	vmm.Activate(root)

	// exercise the heap refill chain once so a broken pool aborts boot
	// here instead of at an arbitrary later allocation
	heapAddr, heapSize := pmm.HeapAllocate(8, 64)
	pmm.HeapFree(heapAddr, heapSize)

	inspectAppImages()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// inspectAppImages reports the physical frame demand of every registered
// application image so admission decisions can be made before any frame is
// committed to loading.
func inspectAppImages() {
	for _, app := range appImages {
		img, err := elf.NewFile(bytes.NewReader(app.data))
		if err != nil {
			kfmt.Printf("[kmain] %s: not an elf image; skipping\n", app.name)
			continue
		}

		loadable := loader.IsLoadable(img)
		segs := loader.LoadSegmentsFromELF(img)
		img.Close()

		if !loadable {
			kfmt.Printf("[kmain] %s: not a loadable riscv executable; skipping\n", app.name)
			continue
		}

		kfmt.Printf("[kmain] %s: load footprint is %d frames\n", app.name, loader.FrameFootprint(segs))
	}
}
